package grove

import "fmt"

// DefaultOffset is the identifier of the first passenger
// of the evaluation table
const DefaultOffset = 892

// Prediction pairs the identifier of a row with the
// class predicted for it.
type Prediction struct {
	ID    int
	Label int
}

// Results takes the labels predicted for the rows of a
// table and the identifier of its first row, and returns
// a prediction per label with sequential identifiers
// starting at offset.
func Results(labels []int, offset int) []Prediction {
	predictions := make([]Prediction, len(labels))
	for i, l := range labels {
		predictions[i] = Prediction{ID: offset + i, Label: l}
	}
	return predictions
}

func (p Prediction) String() string {
	return fmt.Sprintf("%d,%d", p.ID, p.Label)
}
