package feature

import "fmt"

/*
Record is a raw row of a table with its values indexed by column name.
*/
type Record map[string]string

/*
MalformedInputError is returned when a field of a record cannot be
encoded. It names the field, the index of the record it belongs to and
the offending value.
*/
type MalformedInputError struct {
	Field string
	Row   int
	Value string
	Err   error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input on row %d: field %s with value %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

/*
ValueFor takes a column name and the index of the record and returns the
value of the record for that column, or a *MalformedInputError if the
record has no such column.
*/
func (r Record) ValueFor(column string, index int) (string, error) {
	v, ok := r[column]
	if !ok {
		return "", &MalformedInputError{Field: column, Row: index, Err: fmt.Errorf("missing column")}
	}
	return v, nil
}

/*
Encode takes a record, its index and an ordered slice of features and returns
the values of the record for those features encoded as float64 in the same
order. Any value that cannot be encoded makes the whole record fail with a
*MalformedInputError: no partial rows are returned.
*/
func Encode(r Record, index int, features []Feature) ([]float64, error) {
	row := make([]float64, len(features))
	for i, f := range features {
		v, err := r.ValueFor(f.Name(), index)
		if err != nil {
			return nil, err
		}
		row[i], err = f.Encode(v)
		if err != nil {
			return nil, &MalformedInputError{Field: f.Name(), Row: index, Value: v, Err: err}
		}
	}
	return row, nil
}

/*
Names takes a slice of features and returns their names in the same order.
*/
func Names(features []Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name()
	}
	return names
}
