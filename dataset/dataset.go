/*
Package dataset provides Dataset, an immutable matrix of encoded rows with
an optional parallel vector of class labels, and the functions to assemble
one from raw records.
*/
package dataset

import (
	"fmt"
	"math/rand"
)

// DatasetError represents an error related with datasets
type DatasetError string

/*
ErrEmptyDataset is the error returned when trying to grow a tree or a forest
from a dataset without rows.
*/
const ErrEmptyDataset = DatasetError("empty dataset")

// ErrUnlabeledDataset is the error returned when trying to grow
// a tree or a forest from a dataset without class labels.
const ErrUnlabeledDataset = DatasetError("dataset has no labels")

func (de DatasetError) Error() string {
	return string(de)
}

/*
Row is an encoded record: a fixed-length sequence of feature values.
*/
type Row []float64

/*
Dataset represents an ordered collection of rows, all with the same number
of features, optionally paired with a class label per row.

A Dataset is never modified after it is created, so it can be shared between
goroutines. Callers must not modify the rows it returns.
*/
type Dataset struct {
	rows     []Row
	labels   []int
	features int
}

/*
New takes a slice of rows and a slice of labels and returns a dataset
holding copies of them or an error. Labels can be nil for datasets whose
classes are to be predicted; otherwise there must be one non-negative
label per row. All rows must have the same number of features.
*/
func New(rows []Row, labels []int) (*Dataset, error) {
	if labels != nil && len(labels) != len(rows) {
		return nil, fmt.Errorf("dataset has %d rows but %d labels", len(rows), len(labels))
	}
	d := &Dataset{rows: make([]Row, len(rows))}
	for i, r := range rows {
		if i == 0 {
			d.features = len(r)
		} else if len(r) != d.features {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(r), d.features)
		}
		d.rows[i] = append(Row(nil), r...)
	}
	if labels != nil {
		d.labels = make([]int, len(labels))
		for i, l := range labels {
			if l < 0 {
				return nil, fmt.Errorf("row %d has negative label %d", i, l)
			}
			d.labels[i] = l
		}
	}
	return d, nil
}

// Count returns the number of rows in the dataset
func (d *Dataset) Count() int {
	return len(d.rows)
}

// FeatureCount returns the number of features of every row
// in the dataset, 0 for datasets without rows.
func (d *Dataset) FeatureCount() int {
	return d.features
}

// Row returns the i-th row of the dataset
func (d *Dataset) Row(i int) Row {
	return d.rows[i]
}

// Labeled returns whether the dataset has class labels
func (d *Dataset) Labeled() bool {
	return d.labels != nil
}

// Label returns the class label of the i-th row. It panics if
// the dataset is not labeled.
func (d *Dataset) Label(i int) int {
	return d.labels[i]
}

/*
Classes returns the number of classes labels in the dataset can take,
that is, its greatest label plus one. It returns 0 for datasets without
labels or rows.
*/
func (d *Dataset) Classes() int {
	var c int
	for _, l := range d.labels {
		if l+1 > c {
			c = l + 1
		}
	}
	return c
}

/*
Bootstrap takes a source of random numbers and returns a bootstrap
resample of the dataset: a dataset with the same number of rows, each
drawn independently and uniformly with replacement from this one.
Rows are shared, not copied.
*/
func (d *Dataset) Bootstrap(r *rand.Rand) *Dataset {
	n := len(d.rows)
	sample := &Dataset{rows: make([]Row, n), features: d.features}
	if d.labels != nil {
		sample.labels = make([]int, n)
	}
	for i := 0; i < n; i++ {
		j := r.Intn(n)
		sample.rows[i] = d.rows[j]
		if d.labels != nil {
			sample.labels[i] = d.labels[j]
		}
	}
	return sample
}

func (d *Dataset) String() string {
	return fmt.Sprintf("{Dataset rows: %d features: %d labeled: %v}", len(d.rows), d.features, d.Labeled())
}
