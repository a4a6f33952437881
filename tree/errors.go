package tree

import "fmt"

/*
ConfigurationError is returned when the parameters for growing a tree or a
forest, or for predicting with them, are invalid. It is always returned
before any growing work begins.
*/
type ConfigurationError struct {
	Parameter string
	Reason    string
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", ce.Parameter, ce.Reason)
}

/*
ShapeMismatchError is returned when asking for predictions on rows whose
number of features differs from the number a tree or forest was grown with.
*/
type ShapeMismatchError struct {
	Expected int
	Got      int
}

func (sme *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: expected rows with %d features, got %d", sme.Expected, sme.Got)
}
