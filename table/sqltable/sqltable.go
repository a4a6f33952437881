/*
Package sqltable reads records from tables of SQL databases and writes
predictions to them.

The statements are built here and run through an Adapter that hides the
differences between database engines: how identifiers are quoted, how
statement parameters are written and how the database connection is opened.
Implementations for SQLite3 and PostgreSQL are provided by the
sqlite3adapter and pgadapter subpackages.
*/
package sqltable

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/table"
)

/*
MaxInsertionsPerStatement is the maximum number of predictions that are
added with a single insert command. Writing more will result in making
more insertion commands.
*/
const MaxInsertionsPerStatement = 100

/*
Adapter is an interface providing the methods
needed to read and write tables on a database.
*/
type Adapter interface {
	// ColumnName takes the name of a table or column
	// and returns it quoted for use in statements, or
	// an error if it is not valid for the database.
	ColumnName(string) (string, error)
	// Placeholder takes the position (starting at 1) of
	// a parameter in a statement and returns the text
	// that stands for it in the statement
	Placeholder(int) string
	// DB returns the database the adapter works on
	DB() *sql.DB
	// Close closes the database
	Close() error
}

type sqlSource struct {
	db      Adapter
	table   string
	columns []string
	orderBy string
}

type sqlWriter struct {
	db      Adapter
	table   string
	columns table.Columns
	count   int
}

/*
NewSource takes an Adapter, the name of a table, the names of the columns
to read and the name of the column to sort records by, and returns a
table.Source that reads the records from the table. Records have the
values of the given columns as text, with NULL values read as "". With an
empty orderBy, records come in the order the database returns them.
*/
func NewSource(db Adapter, tableName string, columns []string, orderBy string) table.Source {
	return &sqlSource{db, tableName, columns, orderBy}
}

func (ss *sqlSource) Records(ctx context.Context) ([]feature.Record, error) {
	records := []feature.Record{}
	err := ss.IterateOnRecords(ctx, func(_ int, r feature.Record) (bool, error) {
		records = append(records, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

/*
IterateOnRecords takes a context and a lambda function on an integer and
a feature.Record that returns a boolean value. It queries the table and
for each record it calls the lambda function with the record and its index
as parameters, until the lambda function returns false or an error.
*/
func (ss *sqlSource) IterateOnRecords(ctx context.Context, lambda func(int, feature.Record) (bool, error)) error {
	query, err := ss.query()
	if err != nil {
		return err
	}
	rows, err := ss.db.DB().QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("querying table %s: %v", ss.table, err)
	}
	defer rows.Close()
	values := make([]sql.NullString, len(ss.columns))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	for n := 0; rows.Next(); n++ {
		err = rows.Scan(dest...)
		if err != nil {
			return fmt.Errorf("scanning row %d of table %s: %v", n, ss.table, err)
		}
		record := make(feature.Record, len(ss.columns))
		for i, c := range ss.columns {
			record[c] = values[i].String
		}
		ok, err := lambda(n, record)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	err = rows.Err()
	if err != nil {
		return fmt.Errorf("reading table %s: %v", ss.table, err)
	}
	return nil
}

func (ss *sqlSource) query() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("SELECT ")
	for i, c := range ss.columns {
		column, err := ss.db.ColumnName(c)
		if err != nil {
			return "", err
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(column)
	}
	tableName, err := ss.db.ColumnName(ss.table)
	if err != nil {
		return "", err
	}
	buf.WriteString(" FROM ")
	buf.WriteString(tableName)
	if ss.orderBy != "" {
		orderBy, err := ss.db.ColumnName(ss.orderBy)
		if err != nil {
			return "", err
		}
		buf.WriteString(" ORDER BY ")
		buf.WriteString(orderBy)
	}
	return buf.String(), nil
}

/*
NewWriter takes a context, an Adapter, the name of a table and the names
of its columns and returns a table.Writer that inserts predictions into
the table. The table is created if it does not exist, with an integer
primary key column for the identifiers and an integer column for the labels.
*/
func NewWriter(ctx context.Context, db Adapter, tableName string, columns table.Columns) (table.Writer, error) {
	sw := &sqlWriter{db: db, table: tableName, columns: columns}
	t, id, label, err := sw.names()
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY, %s INTEGER NOT NULL)", t, id, label)
	_, err = db.DB().ExecContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("ensuring table %s exists: %v", tableName, err)
	}
	return sw, nil
}

/*
Write inserts the predictions in a single transaction, with statements of up
to MaxInsertionsPerStatement predictions each. If any of them fails the
transaction is rolled back, so either all predictions are written or none.
*/
func (sw *sqlWriter) Write(ctx context.Context, predictions []grove.Prediction) error {
	tx, err := sw.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %v", err)
	}
	for start := 0; start < len(predictions); start += MaxInsertionsPerStatement {
		end := start + MaxInsertionsPerStatement
		if end > len(predictions) {
			end = len(predictions)
		}
		err = sw.insert(ctx, tx, predictions[start:end])
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting predictions %d to %d: %v", sw.count+start+1, sw.count+end, err)
		}
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing %d predictions: %v", len(predictions), err)
	}
	sw.count += len(predictions)
	return nil
}

func (sw *sqlWriter) insert(ctx context.Context, tx *sql.Tx, predictions []grove.Prediction) error {
	t, id, label, err := sw.names()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ", t, id, label))
	args := make([]interface{}, 0, 2*len(predictions))
	for i, p := range predictions {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(fmt.Sprintf("(%s, %s)", sw.db.Placeholder(2*i+1), sw.db.Placeholder(2*i+2)))
		args = append(args, p.ID, p.Label)
	}
	stmt, err := tx.PrepareContext(ctx, buf.String())
	if err != nil {
		return fmt.Errorf("preparing insert command: %v", err)
	}
	defer stmt.Close()
	_, err = stmt.ExecContext(ctx, args...)
	return err
}

// Flush does nothing, predictions are committed as they are written
func (sw *sqlWriter) Flush() error {
	return nil
}

func (sw *sqlWriter) names() (string, string, string, error) {
	t, err := sw.db.ColumnName(sw.table)
	if err != nil {
		return "", "", "", err
	}
	id, err := sw.db.ColumnName(sw.columns.ID)
	if err != nil {
		return "", "", "", err
	}
	label, err := sw.db.ColumnName(sw.columns.Label)
	if err != nil {
		return "", "", "", err
	}
	return t, id, label, nil
}
