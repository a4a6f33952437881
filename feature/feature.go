/*
Package feature defines the observable properties of a record and how their
raw textual values are encoded into numbers a tree can split on.
*/
package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/*
Feature represents a property that can be observed on a record and encoded
as a float64 value.
*/
type Feature interface {
	Name() string
	Encode(value string) (float64, error)
}

/*
DiscreteFeature represents a property that can be observed and that can only
take a value among a finite set. Each value is encoded as its position in the
set of available values.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
	lenient         bool
}

/*
ContinuousFeature represents a property that can be observed and that can take
a numeric value
*/
type ContinuousFeature struct {
	name string
}

/*
NewDiscreteFeature takes a name string and a slice of available value strings
and returns a discrete feature with the given names and available values.
Encoding a value outside the available values fails.
*/
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name: name, availableValues: availableValues}
}

/*
NewLenientDiscreteFeature works like NewDiscreteFeature, but the returned feature
encodes any value outside the available values as the first available value.
*/
func NewLenientDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name: name, availableValues: availableValues, lenient: true}
}

/*
NewContinuousFeature takes a name string and returns a continuous feature with
the given name.
*/
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

/*
Name returns a string with the name of the feature
*/
func (df *DiscreteFeature) Name() string {
	return df.name
}

/*
Encode receives a value and returns its index among the available values of
the feature as a float64. Unknown values produce an error, unless the feature
is lenient, in which case they are encoded as 0.
*/
func (df *DiscreteFeature) Encode(value string) (float64, error) {
	for i, av := range df.availableValues {
		if av == value {
			return float64(i), nil
		}
	}
	if df.lenient && len(df.availableValues) > 0 {
		return 0.0, nil
	}
	return 0.0, fmt.Errorf("discrete feature %s got unknown value %q, expected one of %v", df.name, value, df.availableValues)
}

/*
AvailableValues returns a string slice with the values available for the feature
*/
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

// Lenient returns whether unknown values are coerced instead of rejected.
func (df *DiscreteFeature) Lenient() bool {
	return df.lenient
}

func (df *DiscreteFeature) String() string {
	return df.name
}

/*
Name returns a string with the name of the feature
*/
func (cf *ContinuousFeature) Name() string {
	return cf.name
}

/*
Encode receives a value and parses it as a float64 number, returning an
error if it cannot be parsed or is not finite.
*/
func (cf *ContinuousFeature) Encode(value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0.0, fmt.Errorf("continuous feature %s expects a number: %v", cf.name, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0, fmt.Errorf("continuous feature %s expects a finite number", cf.name)
	}
	return f, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

/*
Label is the feature a forest learns to predict. Its values are binary
class labels: unsigned integers that must be either 0 or 1.
*/
type Label struct {
	name string
}

// NewLabel returns a label read from the column with the given name.
func NewLabel(name string) *Label {
	return &Label{name}
}

// Name returns the name of the label column
func (l *Label) Name() string {
	return l.name
}

/*
Parse takes a record and its index and returns the class label it holds
or a *MalformedInputError if the value is missing, is not an unsigned
integer or is neither 0 nor 1.
*/
func (l *Label) Parse(r Record, index int) (int, error) {
	v, err := r.ValueFor(l.name, index)
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, &MalformedInputError{Field: l.name, Row: index, Value: v, Err: err}
	}
	if u > 1 {
		return 0, &MalformedInputError{Field: l.name, Row: index, Value: v, Err: fmt.Errorf("label must be 0 or 1")}
	}
	return int(u), nil
}

func (l *Label) String() string {
	return l.name
}

/*
Passenger returns the default passenger features in canonical order
(Pclass, Sex, SibSp, Parch) and the Survived label. Sex is encoded as 1
for female and 0 for male.
*/
func Passenger() ([]Feature, *Label) {
	return []Feature{
		NewContinuousFeature("Pclass"),
		NewDiscreteFeature("Sex", []string{"male", "female"}),
		NewContinuousFeature("SibSp"),
		NewContinuousFeature("Parch"),
	}, NewLabel("Survived")
}
