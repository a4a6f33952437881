/*
Package mongotable reads records from MongoDB collections and writes
predictions to them.
*/
package mongotable

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/table"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type mongoSource struct {
	session    *mgo.Session
	collection string
	columns    []string
	orderBy    string
}

type mongoWriter struct {
	session    *mgo.Session
	collection string
	columns    table.Columns
}

/*
NewSource takes a MongoDB database session, the name of a collection on
the default database for that session, the names of the fields to read and
the name of the field to sort documents by, and returns a table.Source that
reads a record per document. Fields missing in a document are missing in its
record too, null fields are read as "".
*/
func NewSource(session *mgo.Session, collection string, columns []string, orderBy string) (table.Source, error) {
	ms := &mongoSource{session, collection, columns, orderBy}
	for _, c := range columns {
		err := validField(c)
		if err != nil {
			return nil, err
		}
	}
	if orderBy != "" {
		err := validField(orderBy)
		if err != nil {
			return nil, err
		}
		index := mgo.Index{
			Key:        []string{orderBy},
			Background: true,
			Sparse:     true,
		}
		err = ms.c().EnsureIndex(index)
		if err != nil {
			return nil, err
		}
	}
	return ms, nil
}

func (ms *mongoSource) Records(ctx context.Context) ([]feature.Record, error) {
	selector := bson.M{}
	for _, c := range ms.columns {
		selector[c] = 1
	}
	query := ms.c().Find(nil).Select(selector)
	if ms.orderBy != "" {
		query = query.Sort(ms.orderBy)
	}
	iter := query.Iter()
	defer iter.Close()
	records := []feature.Record{}
	var doc bson.M
	for iter.Next(&doc) {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}
		record := make(feature.Record, len(ms.columns))
		for _, c := range ms.columns {
			v, ok := doc[c]
			if !ok {
				continue
			}
			record[c], err = text(v)
			if err != nil {
				return nil, &feature.MalformedInputError{Field: c, Row: len(records), Value: fmt.Sprintf("%v", v), Err: err}
			}
		}
		records = append(records, record)
		doc = nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("reading collection %s: %v", ms.collection, err)
	}
	return records, nil
}

func (ms *mongoSource) c() *mgo.Collection {
	return ms.session.DB("").C(ms.collection)
}

/*
NewWriter takes a MongoDB database session, the name of a collection
on the default database for that session and the names of the fields
for the identifiers and labels, and returns a table.Writer that inserts
a document per prediction into the collection.
*/
func NewWriter(session *mgo.Session, collection string, columns table.Columns) (table.Writer, error) {
	for _, c := range []string{columns.ID, columns.Label} {
		err := validField(c)
		if err != nil {
			return nil, err
		}
	}
	return &mongoWriter{session, collection, columns}, nil
}

func (mw *mongoWriter) Write(ctx context.Context, predictions []grove.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	err := ctx.Err()
	if err != nil {
		return err
	}
	docs := make([]interface{}, 0, len(predictions))
	for _, p := range predictions {
		docs = append(docs, bson.M{mw.columns.ID: p.ID, mw.columns.Label: p.Label})
	}
	err = mw.session.DB("").C(mw.collection).Insert(docs...)
	if err != nil {
		return fmt.Errorf("inserting predictions into %s: %v", mw.collection, err)
	}
	return nil
}

// Flush does nothing, predictions are inserted as they are written
func (mw *mongoWriter) Flush() error {
	return nil
}

func validField(name string) error {
	if name == "_id" {
		return fmt.Errorf("invalid field name %q: reserved collection field", "_id")
	}
	if name == "" || strings.ContainsAny(name, ".$") {
		return fmt.Errorf("invalid field name %q: empty or contains reserved characters %q or %q", name, ".", "$")
	}
	return nil
}

func text(v interface{}) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", nil
	case string:
		return tv, nil
	case int:
		return strconv.Itoa(tv), nil
	case int64:
		return strconv.FormatInt(tv, 10), nil
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(tv), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}
