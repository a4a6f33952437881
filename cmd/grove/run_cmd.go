package main

import (
	"fmt"
	"os"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/table"
	"github.com/spf13/cobra"
)

type runCmdConfig struct {
	*rootCmdConfig
	tableConfig
	forestConfig
	trainInput   string
	testInput    string
	output       string
	outputTable  string
	forestOutput string
	offset       int
}

func runCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &runCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Grow a forest and predict with it in one go",
		Long: `Grow a forest from a training table of passengers and write its predictions for
the passengers of an evaluation table, by default reading data/train.csv and
data/test.csv and writing submission.csv with identifiers starting at 892.`,
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
			trainingSet, err := config.readDataset(ctx, config.logger, config.trainInput, md, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading training set: %v\n", err)
				os.Exit(4)
			}
			evaluationSet, err := config.readDataset(ctx, config.logger, config.testInput, md, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading evaluation set: %v\n", err)
				os.Exit(4)
			}
			config.Logf("Growing forest %v from a set with %d samples...", fc, trainingSet.Count())
			forest, err := grove.Train(ctx, trainingSet, fc, grove.WithLogger(config.logger))
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(5)
			}
			forest.Names = feature.Names(md.Features)
			forest.Label = md.Label.Name()
			if config.forestOutput != "" {
				err = outputForest(config.forestOutput, forest)
				if err != nil {
					fmt.Fprintf(os.Stderr, "writing the forest: %v\n", err)
					os.Exit(6)
				}
			}
			config.Logf("Predicting %d passengers...", evaluationSet.Count())
			labels, err := forest.Predict(ctx, evaluationSet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "predicting: %v\n", err)
				os.Exit(7)
			}
			columns := table.Columns{ID: md.ID, Label: md.Label.Name()}
			err = config.writePredictions(ctx, config.logger, config.output, config.outputTable, columns, grove.Results(labels, config.offset))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Done")
		},
	}
	cmd.Flags().StringVar(&(config.trainInput), "train", "data/train.csv", "table with the passengers to grow the forest from: "+inputHelp)
	cmd.Flags().StringVar(&(config.testInput), "test", "data/test.csv", "table with the passengers to predict: "+inputHelp)
	cmd.Flags().StringVarP(&(config.output), "output", "o", "submission.csv", "table to write the predictions to: "+inputHelp)
	cmd.Flags().StringVar(&(config.outputTable), "output-table", "predictions", "name of the table (or collection) to write the predictions to on SQL (or MongoDB) outputs")
	cmd.Flags().StringVar(&(config.forestOutput), "forest-output", "", "path to a file to which the grown forest will also be written in JSON format")
	cmd.Flags().IntVar(&(config.offset), "offset", grove.DefaultOffset, "identifier of the first passenger to predict")
	config.tableConfig.addFlags(cmd)
	config.forestConfig.addFlags(cmd)
	return cmd
}

func (rcc *runCmdConfig) Validate() error {
	if rcc.trainInput == "" || rcc.testInput == "" {
		return fmt.Errorf("train and test flags cannot be empty")
	}
	if rcc.output == "" {
		return fmt.Errorf("output flag cannot be empty")
	}
	if rcc.outputTable == "" {
		return fmt.Errorf("output-table flag cannot be empty")
	}
	err := rcc.tableConfig.Validate()
	if err != nil {
		return err
	}
	return rcc.forestConfig.Validate()
}
