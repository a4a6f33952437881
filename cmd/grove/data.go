package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/feature/yaml"
	"github.com/pbanos/grove/table"
	"github.com/pbanos/grove/table/csv"
	"github.com/pbanos/grove/table/mongotable"
	"github.com/pbanos/grove/table/sqltable"
	"github.com/pbanos/grove/table/sqltable/pgadapter"
	"github.com/pbanos/grove/table/sqltable/sqlite3adapter"
	"github.com/pbanos/grove/tree"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
)

const inputHelp = "a CSV file path, an SQLite3 (.db) file path, a PostgreSQL (postgresql://) or MongoDB (mongodb://) URL"

// tableConfig holds the flags shared by the commands that
// read passenger tables or write prediction tables
type tableConfig struct {
	metadataInput string
	lenient       bool
	table         string
	maxDBConns    int
}

func (tc *tableConfig) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&(tc.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features, label and id columns of the tables (defaults to Pclass, Sex, SibSp and Parch features, Survived label and PassengerId)")
	cmd.Flags().BoolVar(&(tc.lenient), "lenient", false, "encode unknown values of discrete features as their first value instead of failing")
	cmd.Flags().StringVar(&(tc.table), "table", "passengers", "name of the table (or collection) to read from SQL (or MongoDB) inputs")
	cmd.Flags().IntVar(&(tc.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
}

func (tc *tableConfig) Validate() error {
	if tc.table == "" {
		return fmt.Errorf("table flag cannot be empty")
	}
	if tc.maxDBConns < 0 {
		return fmt.Errorf("max-db-conns flag cannot be negative")
	}
	return nil
}

func (tc *tableConfig) metadata(l logger) (*yaml.Metadata, error) {
	if tc.metadataInput == "" {
		l.Logf("Using default passenger metadata")
		return yaml.DefaultMetadata(tc.lenient), nil
	}
	l.Logf("Reading metadata from %s...", tc.metadataInput)
	md, err := yaml.ReadMetadataFromFile(tc.metadataInput)
	if err != nil {
		return nil, err
	}
	if tc.lenient {
		for i, f := range md.Features {
			if df, ok := f.(*feature.DiscreteFeature); ok {
				md.Features[i] = feature.NewLenientDiscreteFeature(df.Name(), df.AvailableValues())
			}
		}
	}
	return md, nil
}

/*
readDataset takes a context, an input, metadata and whether the rows must
be labeled and returns the dataset assembled from the input records. Inputs
are picked by their form: postgresql:// or postgres:// URLs are PostgreSQL
databases, mongodb:// URLs MongoDB databases, paths ending in .db SQLite3
files, other paths CSV files, and an empty input is CSV read from STDIN.
*/
func (tc *tableConfig) readDataset(ctx context.Context, l logger, input string, md *yaml.Metadata, labeled bool) (*dataset.Dataset, error) {
	columns := feature.Names(md.Features)
	var label *feature.Label
	if labeled {
		label = md.Label
		columns = append(columns, label.Name())
	}
	source, closeSource, err := tc.source(l, input, columns, md.ID)
	if err != nil {
		return nil, err
	}
	defer closeSource()
	records, err := source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading records: %v", err)
	}
	l.Logf("Read %d records, encoding them...", len(records))
	return dataset.Assemble(records, md.Features, label)
}

func (tc *tableConfig) source(l logger, input string, columns []string, orderBy string) (table.Source, func(), error) {
	switch {
	case isPostgreSQL(input):
		l.Logf("Creating PostgreSQL adapter for url %s to read table %s...", input, tc.table)
		adapter, err := pgadapter.New(input, tc.maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		return sqltable.NewSource(adapter, tc.table, append(columns, orderBy), orderBy), func() { adapter.Close() }, nil
	case isMongoDB(input):
		l.Logf("Connecting to MongoDB at %s to read collection %s...", input, tc.table)
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %v", err)
		}
		source, err := mongotable.NewSource(session, tc.table, columns, orderBy)
		if err != nil {
			session.Close()
			return nil, nil, err
		}
		return source, session.Close, nil
	case strings.HasSuffix(input, ".db"):
		l.Logf("Creating SQLite3 adapter for file %s to read table %s...", input, tc.table)
		adapter, err := sqlite3adapter.New(input, tc.maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		return sqltable.NewSource(adapter, tc.table, append(columns, orderBy), orderBy), func() { adapter.Close() }, nil
	case input == "":
		l.Logf("Reading CSV table from STDIN...")
	default:
		l.Logf("Reading CSV table from %s...", input)
	}
	return csv.NewSource(input, columns), func() {}, nil
}

/*
writer takes a context, an output and the names of the columns of the
prediction table and returns a table.Writer for the output along with a
function to close it. Outputs are picked the way inputs are, with an empty
output meaning CSV written to STDOUT.
*/
func (tc *tableConfig) writer(ctx context.Context, l logger, output, outputTable string, columns table.Columns) (table.Writer, func() error, error) {
	switch {
	case isPostgreSQL(output):
		l.Logf("Creating PostgreSQL adapter for url %s to write table %s...", output, outputTable)
		adapter, err := pgadapter.New(output, tc.maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		w, err := sqltable.NewWriter(ctx, adapter, outputTable, columns)
		if err != nil {
			adapter.Close()
			return nil, nil, err
		}
		return w, adapter.Close, nil
	case isMongoDB(output):
		l.Logf("Connecting to MongoDB at %s to write collection %s...", output, outputTable)
		session, err := mgo.Dial(output)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %v", err)
		}
		w, err := mongotable.NewWriter(session, outputTable, columns)
		if err != nil {
			session.Close()
			return nil, nil, err
		}
		return w, func() error { session.Close(); return nil }, nil
	case strings.HasSuffix(output, ".db"):
		l.Logf("Creating SQLite3 adapter for file %s to write table %s...", output, outputTable)
		adapter, err := sqlite3adapter.New(output, tc.maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		w, err := sqltable.NewWriter(ctx, adapter, outputTable, columns)
		if err != nil {
			adapter.Close()
			return nil, nil, err
		}
		return w, adapter.Close, nil
	}
	if output == "" {
		w, err := csv.NewWriter(os.Stdout, columns)
		return w, func() error { return nil }, err
	}
	l.Logf("Writing CSV table to %s...", output)
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %v", output, err)
	}
	w, err := csv.NewWriter(f, columns)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return w, f.Close, nil
}

// writePredictions writes the predictions to the output
// and flushes and closes it
func (tc *tableConfig) writePredictions(ctx context.Context, l logger, output, outputTable string, columns table.Columns, predictions []grove.Prediction) error {
	w, closeOutput, err := tc.writer(ctx, l, output, outputTable, columns)
	if err != nil {
		return err
	}
	err = w.Write(ctx, predictions)
	if err == nil {
		err = w.Flush()
	}
	cerr := closeOutput()
	if err != nil {
		return fmt.Errorf("writing predictions: %v", err)
	}
	if cerr != nil {
		return fmt.Errorf("closing prediction output: %v", cerr)
	}
	return nil
}

func isPostgreSQL(uri string) bool {
	return strings.HasPrefix(uri, "postgresql://") || strings.HasPrefix(uri, "postgres://")
}

func isMongoDB(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://")
}

func loadForest(path string) (*grove.Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading forest in JSON from %s: %v", path, err)
	}
	defer f.Close()
	forest, err := grove.ReadJSONForest(f)
	if err != nil {
		return nil, fmt.Errorf("parsing forest in JSON from %s: %v", path, err)
	}
	return forest, nil
}

func outputForest(path string, forest *grove.Forest) error {
	f := os.Stdout
	if path != "" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return err
		}
	}
	err := grove.WriteJSONForest(f, forest)
	if path != "" {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}
	return err
}

// checkForest returns an error if the forest was grown
// from features other than the ones in the metadata
func checkForest(forest *grove.Forest, md *yaml.Metadata) error {
	names := feature.Names(md.Features)
	if forest.Features != len(names) {
		return &tree.ShapeMismatchError{Expected: forest.Features, Got: len(names)}
	}
	for i, name := range forest.Names {
		if strings.HasPrefix(name, "#") {
			continue
		}
		if name != names[i] {
			return fmt.Errorf("forest feature %d is %s, metadata feature %d is %s", i, name, i, names[i])
		}
	}
	return nil
}
