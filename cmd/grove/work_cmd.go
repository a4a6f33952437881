package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pbanos/grove"
	"github.com/spf13/cobra"
)

type workCmdConfig struct {
	*rootCmdConfig
	tableConfig
	redisConfig
	dataInput string
	poll      time.Duration
	once      bool
}

func workCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &workCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Grow trees for forests seeded on a redis server",
		Long: `Grow the trees of forests seeded by grow commands run with the same redis flags.
The worker must read the same training table the forest was seeded with. It keeps
waiting for new forests until interrupted, unless the once flag is given.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := config.Context()
			md, err := config.metadata(config.logger)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			trainingSet, err := config.readDataset(ctx, config.logger, config.dataInput, md, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading training set: %v\n", err)
				os.Exit(4)
			}
			q, s, closeRedis, err := config.queueAndStore(config.logger)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			defer closeRedis()
			defer q.Stop(ctx)
			for {
				config.Logf("Waiting for trees to grow...")
				err = grove.Work(ctx, trainingSet, q, s, config.logger, config.poll)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					fmt.Fprintf(os.Stderr, "growing trees: %v\n", err)
					os.Exit(6)
				}
				if config.once {
					return
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(config.poll):
				}
			}
		},
	}
	cmd.Flags().StringVarP(&(config.dataInput), "input", "i", "", "table with the passengers to grow the trees from: "+inputHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.Flags().DurationVar(&(config.poll), "poll", time.Second, "time to wait between checks of the queue when it has no trees to grow")
	cmd.Flags().BoolVar(&(config.once), "once", false, "stop once the queue has no trees to grow instead of waiting for more")
	config.tableConfig.addFlags(cmd)
	config.redisConfig.addFlags(cmd)
	return cmd
}

func (wcc *workCmdConfig) Validate() error {
	err := wcc.tableConfig.Validate()
	if err != nil {
		return err
	}
	if !wcc.redisConfig.enabled() {
		return fmt.Errorf("required redis flag was not set")
	}
	if wcc.poll <= 0 {
		return fmt.Errorf("poll flag must be positive")
	}
	return wcc.redisConfig.Validate()
}
