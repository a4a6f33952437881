package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	logger
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grove",
		Short: "grove is a tool to grow random forests",
		Long:  `A tool to grow random forests from passenger data, test them, and use them to predict who survives`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP((*bool)(&config.logger), "verbose", "v", false, "log progress to STDERR")
	rootCmd.AddCommand(
		versionCmd(),
		growCmd(config),
		workCmd(config),
		predictCmd(config),
		testCmd(config),
		runCmd(config),
		askCmd(config),
	)
	return rootCmd
}

// Context returns a context that is cancelled when the
// process receives an interrupt or termination signal
func (rcc *rootCmdConfig) Context() context.Context {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = context.WithCancel(context.Background())
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case s := <-signals:
				rcc.Logf("Received %v, stopping...", s)
				rcc.cancelFunc()
			case <-rcc.ctx.Done():
			}
			signal.Stop(signals)
		}()
	}
	return rcc.ctx
}
