/*
Package csv reads records from CSV tables and writes predictions to them.

The first row of a CSV table is its header, with the names of the columns.
Every other row is a record whose values are looked up by column name.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/table"
)

type csvWriter struct {
	count   int
	columns table.Columns
	w       *csv.Writer
}

type csvSource struct {
	path     string
	required []string
}

/*
ReadRecords takes an io.Reader for a CSV stream and the names of the
columns required to be in it and returns the records parsed from the
reader or an error. Reading fails before any record is parsed if a
required column is not in the header.
*/
func ReadRecords(reader io.Reader, required []string) ([]feature.Record, error) {
	records := []feature.Record{}
	err := ReadRecordsByRow(reader, required, func(_ int, r feature.Record) (bool, error) {
		records = append(records, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

/*
ReadRecordsByRow takes an io.Reader for a CSV stream, the names of the
columns required to be in it and a lambda function on an integer and a
feature.Record that returns a boolean value. It parses the records from
the reader and for each it calls the lambda function with the record and
its index as parameters. If the lambda function returns true, it will
continue processing the next record, otherwise it will stop. An error is
returned if something goes wrong when reading the stream, including rows
with a different number of values than the header.
*/
func ReadRecordsByRow(reader io.Reader, required []string, lambda func(int, feature.Record) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	err = checkHeader(header, required)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		record := make(feature.Record, len(header))
		for i, column := range header {
			record[column] = row[i]
		}
		ok, err := lambda(l-2, record)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadRecordsFromFilePath takes a filepath string and the names of the
required columns, opens the file to which the filepath points to and
uses ReadRecords to return its records or an error. If the filepath is
"" os.Stdin is read instead.
*/
func ReadRecordsFromFilePath(filepath string, required []string) ([]feature.Record, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading CSV table: %v", err)
		}
		defer f.Close()
	}
	records, err := ReadRecords(f, required)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return records, nil
}

/*
NewSource takes a filepath string and the names of the required columns
and returns a table.Source reading the records with ReadRecordsFromFilePath.
*/
func NewSource(filepath string, required []string) table.Source {
	return &csvSource{filepath, required}
}

func (cs *csvSource) Records(ctx context.Context) ([]feature.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadRecordsFromFilePath(cs.path, cs.required)
}

/*
NewWriter takes an io.Writer and the names of the columns for
the identifiers and the labels and returns a table.Writer that
will write predictions on the io.Writer, after a header with the
column names.
*/
func NewWriter(writer io.Writer, columns table.Columns) (table.Writer, error) {
	w := csv.NewWriter(writer)
	err := w.Write([]string{columns.ID, columns.Label})
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{columns: columns, w: w}, nil
}

/*
WritePredictions takes a context, a writer, the names of the
columns and a slice of predictions and dumps the predictions to
the writer in CSV format. It returns an error if something
went wrong when writing to the writer.
*/
func WritePredictions(ctx context.Context, writer io.Writer, columns table.Columns, predictions []grove.Prediction) error {
	cw, err := NewWriter(writer, columns)
	if err != nil {
		return err
	}
	err = cw.Write(ctx, predictions)
	if err != nil {
		return err
	}
	return cw.Flush()
}

func checkHeader(header, required []string) error {
	columns := make(map[string]bool)
	for _, name := range header {
		if columns[name] {
			return fmt.Errorf("parsing header: duplicate column %s", name)
		}
		columns[name] = true
	}
	for _, name := range required {
		if !columns[name] {
			return fmt.Errorf("parsing header: missing column %s", name)
		}
	}
	return nil
}

func (cw *csvWriter) Write(ctx context.Context, predictions []grove.Prediction) error {
	for _, p := range predictions {
		err := ctx.Err()
		if err != nil {
			return err
		}
		err = cw.w.Write([]string{strconv.Itoa(p.ID), strconv.Itoa(p.Label)})
		if err != nil {
			return fmt.Errorf("writing CSV row for prediction %d: %v", cw.count+1, err)
		}
		cw.count++
	}
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
