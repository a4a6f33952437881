package dataset

import (
	"github.com/pbanos/grove/feature"
)

/*
Assemble takes a slice of records, an ordered slice of features and a label
and returns a dataset with a row per record holding the record's encoded
values for the features, in the same order. If the label is not nil each
row is paired with the class parsed from the record's label column,
otherwise the dataset is unlabeled.

The first record that cannot be encoded makes Assemble return its
*feature.MalformedInputError and no dataset.
*/
func Assemble(records []feature.Record, features []feature.Feature, label *feature.Label) (*Dataset, error) {
	d := &Dataset{rows: make([]Row, 0, len(records)), features: len(features)}
	if label != nil {
		d.labels = make([]int, 0, len(records))
	}
	for i, r := range records {
		row, err := feature.Encode(r, i, features)
		if err != nil {
			return nil, err
		}
		d.rows = append(d.rows, row)
		if label != nil {
			class, err := label.Parse(r, i)
			if err != nil {
				return nil, err
			}
			d.labels = append(d.labels, class)
		}
	}
	return d, nil
}
