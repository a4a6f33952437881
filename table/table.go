/*
Package table defines the interfaces for the tables passengers are read
from and predictions written to. Its subpackages implement them over CSV
files, SQL databases and MongoDB collections.
*/
package table

import (
	"context"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature"
)

/*
Source is an interface for tables records can be read from.
Records returns all the records in the table, in the order
the table keeps them, or an error.
*/
type Source interface {
	Records(ctx context.Context) ([]feature.Record, error)
}

/*
Writer is an interface for a table predictions
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given
	// predictions and will return an error
	// if not all of them could be written
	Write(context.Context, []grove.Prediction) error
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

/*
Columns holds the names of the columns of the tables
predictions are written to.
*/
type Columns struct {
	ID    string
	Label string
}

// SourceFunc wraps a function with the signature of
// the Records method to implement the Source interface
type SourceFunc func(context.Context) ([]feature.Record, error)

// Records calls the SourceFunc
func (sf SourceFunc) Records(ctx context.Context) ([]feature.Record, error) {
	return sf(ctx)
}
