package dataset

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pbanos/grove/feature"
)

func TestNewValidatesShape(t *testing.T) {
	if _, err := New([]Row{{1, 2}, {3}}, nil); err == nil {
		t.Errorf("expected error for rows of different widths")
	}
	if _, err := New([]Row{{1, 2}, {3, 4}}, []int{0}); err == nil {
		t.Errorf("expected error for fewer labels than rows")
	}
	if _, err := New([]Row{{1, 2}}, []int{-1}); err == nil {
		t.Errorf("expected error for negative label")
	}
	d, err := New([]Row{{1, 2}, {3, 4}}, []int{0, 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if d.Count() != 2 || d.FeatureCount() != 2 || !d.Labeled() || d.Classes() != 2 {
		t.Errorf("unexpected dataset %v with %d classes", d, d.Classes())
	}
}

func TestNewCopiesInput(t *testing.T) {
	rows := []Row{{1, 2}}
	labels := []int{1}
	d, err := New(rows, labels)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	rows[0][0] = 9
	labels[0] = 0
	if d.Row(0)[0] != 1 || d.Label(0) != 1 {
		t.Errorf("dataset changed after modifying its input: %v %d", d.Row(0), d.Label(0))
	}
}

func TestBootstrap(t *testing.T) {
	rows := []Row{{0}, {1}, {2}, {3}, {4}}
	d, err := New(rows, []int{0, 1, 0, 1, 0})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	s1 := d.Bootstrap(rand.New(rand.NewSource(42)))
	s2 := d.Bootstrap(rand.New(rand.NewSource(42)))
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("expected equal resamples for equal seeds, got %v and %v", s1.rows, s2.rows)
	}
	if s1.Count() != d.Count() || s1.FeatureCount() != 1 {
		t.Fatalf("expected resample of %d rows, got %v", d.Count(), s1)
	}
	for i := 0; i < s1.Count(); i++ {
		v := int(s1.Row(i)[0])
		if s1.Label(i) != v%2 {
			t.Errorf("row %d: label %d does not belong to row %v", i, s1.Label(i), s1.Row(i))
		}
	}
}

func TestAssemble(t *testing.T) {
	features, label := feature.Passenger()
	records := []feature.Record{
		{"PassengerId": "1", "Survived": "0", "Pclass": "3", "Sex": "male", "SibSp": "1", "Parch": "0"},
		{"PassengerId": "2", "Survived": "1", "Pclass": "1", "Sex": "female", "SibSp": "1", "Parch": "0"},
	}
	d, err := Assemble(records, features, label)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if !reflect.DeepEqual(d.Row(1), Row{1, 1, 1, 0}) || d.Label(0) != 0 || d.Label(1) != 1 {
		t.Errorf("unexpected dataset contents: %v", d.rows)
	}
	u, err := Assemble(records, features, nil)
	if err != nil {
		t.Fatalf("Assemble without label returned error: %v", err)
	}
	if u.Labeled() {
		t.Errorf("expected dataset without labels")
	}
}

func TestAssembleFailsWholeTable(t *testing.T) {
	features, label := feature.Passenger()
	records := []feature.Record{
		{"Survived": "0", "Pclass": "3", "Sex": "male", "SibSp": "1", "Parch": "0"},
		{"Survived": "3", "Pclass": "1", "Sex": "female", "SibSp": "1", "Parch": "0"},
	}
	d, err := Assemble(records, features, label)
	if d != nil {
		t.Errorf("expected no dataset, got %v", d)
	}
	var mie *feature.MalformedInputError
	if !errors.As(err, &mie) || mie.Row != 1 || mie.Field != "Survived" {
		t.Errorf("expected malformed Survived on row 1, got %v", err)
	}
}
