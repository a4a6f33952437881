package main

import (
	"fmt"
	"os"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	tableConfig
	forestConfig
	redisConfig
	dataInput string
	output    string
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a forest from a table of passengers",
		Long:  `Grow a random forest from a table of passengers to predict their survival.`,
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
			fc, err := config.config(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			trainingSet, err := config.readDataset(ctx, config.logger, config.dataInput, md, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading training set: %v\n", err)
				os.Exit(4)
			}
			opts := []grove.Option{grove.WithLogger(config.logger)}
			if config.enabled() {
				q, s, closeRedis, err := config.queueAndStore(config.logger)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
				defer closeRedis()
				defer q.Stop(ctx)
				opts = append(opts, grove.WithQueue(q), grove.WithStore(s))
			}
			config.Logf("Growing forest %v from a set with %d samples and %d features to predict %s...", fc, trainingSet.Count(), trainingSet.FeatureCount(), md.Label.Name())
			forest, err := grove.Train(ctx, trainingSet, fc, opts...)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Done")
			forest.Names = feature.Names(md.Features)
			forest.Label = md.Label.Name()
			err = outputForest(config.output, forest)
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing the forest: %v\n", err)
				os.Exit(7)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.dataInput), "input", "i", "", "table with the passengers to grow the forest from: "+inputHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.Flags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the forest will be written in JSON format (defaults to STDOUT)")
	config.tableConfig.addFlags(cmd)
	config.forestConfig.addFlags(cmd)
	config.redisConfig.addFlags(cmd)
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	err := gcc.tableConfig.Validate()
	if err != nil {
		return err
	}
	err = gcc.forestConfig.Validate()
	if err != nil {
		return err
	}
	return gcc.redisConfig.Validate()
}
