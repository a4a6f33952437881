package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	tableConfig
	forestInput string
	dataInput   string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the accuracy of a forest",
		Long:  `Test the accuracy of a forest against a table of passengers whose survival is known`,
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
			forest, err := loadForest(config.forestInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			err = checkForest(forest, md)
			if err != nil {
				fmt.Fprintf(os.Stderr, "forest does not match metadata: %v\n", err)
				os.Exit(3)
			}
			testingSet, err := config.readDataset(ctx, config.logger, config.dataInput, md, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading testing set: %v\n", err)
				os.Exit(4)
			}
			config.Logf("Testing %v against a set with %d samples...", forest, testingSet.Count())
			accuracy, err := forest.Test(ctx, testingSet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing forest: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Done")
			fmt.Printf("Accuracy: %f\n", accuracy)
		},
	}
	cmd.Flags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest to test will be read and parsed as JSON (required)")
	cmd.Flags().StringVarP(&(config.dataInput), "input", "i", "", "table with the passengers to test the forest against: "+inputHelp+" (defaults to STDIN, interpreted as CSV)")
	config.tableConfig.addFlags(cmd)
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	return tcc.tableConfig.Validate()
}
