package main

import (
	"fmt"
	"os"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/table/inputrecord"
	"github.com/spf13/cobra"
)

type askCmdConfig struct {
	*rootCmdConfig
	tableConfig
	forestInput string
}

type stdoutFeatureValueRequester struct{}

func askCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &askCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Predict the survival of a passenger answering questions",
		Long:  `Use a forest to predict the survival of a single passenger whose features are asked for on STDOUT and read from STDIN`,
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
			records, err := inputrecord.NewSource(os.Stdin, md.Features, stdoutFeatureValueRequester{}).Records(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading passenger: %v\n", err)
				os.Exit(4)
			}
			ds, err := dataset.Assemble(records, md.Features, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "encoding passenger: %v\n", err)
				os.Exit(4)
			}
			labels, err := forest.Predict(ctx, ds)
			if err != nil {
				fmt.Fprintf(os.Stderr, "predicting: %v\n", err)
				os.Exit(5)
			}
			fmt.Printf("Predicted %s is %d\n", md.Label.Name(), labels[0])
		},
	}
	cmd.Flags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest will be read and parsed as JSON (required)")
	config.tableConfig.addFlags(cmd)
	return cmd
}

func (acc *askCmdConfig) Validate() error {
	if acc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	return acc.tableConfig.Validate()
}

func (stdoutFeatureValueRequester) RequestValueFor(f feature.Feature) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Printf("Please provide the passenger's %s:\n(valid values are %v)\n", f.Name(), f.AvailableValues())
	case *feature.ContinuousFeature:
		fmt.Printf("Please provide the passenger's %s:\n(valid values are real numbers)\n", f.Name())
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}

func (stdoutFeatureValueRequester) RejectValueFor(f feature.Feature, value string, err error) error {
	fmt.Printf("%q is not a valid value for the passenger's %s (%v). Please try again.\n", value, f.Name(), err)
	return nil
}
