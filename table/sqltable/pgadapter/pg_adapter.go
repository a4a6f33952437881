/*
Package pgadapter provides an implementation of the
Adapter interface in the sqltable package that works
over a PostgreSQL database.
*/
package pgadapter

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pbanos/grove/table/sqltable"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and a maximum number of
open connections (0 for no limit) and returns an Adapter that works on
the database or an error if the URL is not valid.
*/
func New(url string, maxConns int) (sqltable.Adapter, error) {
	connector, err := pq.NewConnector(url)
	if err != nil {
		return nil, fmt.Errorf("parsing PostgreSQL url: %v", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(maxConns)
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty names cannot be used as table or column names")
	}
	return pq.QuoteIdentifier(name), nil
}

func (a *adapter) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Close() error {
	return a.db.Close()
}
