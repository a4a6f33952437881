package main

import (
	"fmt"
	"os"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/table"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	tableConfig
	forestInput string
	dataInput   string
	output      string
	outputTable string
	offset      int
	idColumn    string
	labelColumn string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the survival of a table of passengers",
		Long: `Use a forest to predict the survival of every passenger in a table and write the
predictions to another table, identifying passengers with consecutive numbers.`,
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
			evaluationSet, err := config.readDataset(ctx, config.logger, config.dataInput, md, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading evaluation set: %v\n", err)
				os.Exit(4)
			}
			config.Logf("Predicting %d passengers with %v...", evaluationSet.Count(), forest)
			labels, err := forest.Predict(ctx, evaluationSet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "predicting: %v\n", err)
				os.Exit(5)
			}
			columns := config.columns(md.ID, md.Label.Name())
			err = config.writePredictions(ctx, config.logger, config.output, config.outputTable, columns, grove.Results(labels, config.offset))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.forestInput), "forest", "f", "", "path to a file from which the forest will be read and parsed as JSON (required)")
	cmd.Flags().StringVarP(&(config.dataInput), "input", "i", "", "table with the passengers to predict: "+inputHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.Flags().StringVarP(&(config.output), "output", "o", "", "table to write the predictions to: "+inputHelp+" (defaults to STDOUT, written as CSV)")
	cmd.Flags().StringVar(&(config.outputTable), "output-table", "predictions", "name of the table (or collection) to write the predictions to on SQL (or MongoDB) outputs")
	cmd.Flags().IntVar(&(config.offset), "offset", grove.DefaultOffset, "identifier of the first passenger")
	cmd.Flags().StringVar(&(config.idColumn), "id-column", "", "name of the identifier column of the predictions (defaults to the metadata id)")
	cmd.Flags().StringVar(&(config.labelColumn), "label-column", "", "name of the label column of the predictions (defaults to the metadata label)")
	config.tableConfig.addFlags(cmd)
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	if pcc.outputTable == "" {
		return fmt.Errorf("output-table flag cannot be empty")
	}
	return pcc.tableConfig.Validate()
}

func (pcc *predictCmdConfig) columns(id, label string) table.Columns {
	columns := table.Columns{ID: pcc.idColumn, Label: pcc.labelColumn}
	if columns.ID == "" {
		columns.ID = id
	}
	if columns.Label == "" {
		columns.Label = label
	}
	return columns
}
