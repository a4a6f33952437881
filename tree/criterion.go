package tree

import "math"

/*
Criterion names the impurity measure used to choose among candidate splits:
the split minimizing the weighted impurity of its two sides is chosen.
*/
type Criterion string

const (
	// Gini impurity: 1 - sum(p_i^2)
	Gini = Criterion("gini")
	// Entropy: -sum(p_i * ln(p_i))
	Entropy = Criterion("entropy")
)

// Valid returns whether the criterion is a known one. The empty
// criterion is valid and means Gini.
func (c Criterion) Valid() bool {
	return c == "" || c == Gini || c == Entropy
}

/*
Impurity takes the per-class counts of a set of n rows and returns its
impurity according to the criterion. Empty sets have no impurity.
*/
func (c Criterion) Impurity(counts []int, n int) float64 {
	if n == 0 {
		return 0.0
	}
	total := float64(n)
	var result float64
	if c == Entropy {
		for _, count := range counts {
			if count > 0 {
				p := float64(count) / total
				result -= p * math.Log(p)
			}
		}
		return result
	}
	result = 1.0
	for _, count := range counts {
		p := float64(count) / total
		result -= p * p
	}
	return result
}

func (c Criterion) String() string {
	if c == "" {
		return string(Gini)
	}
	return string(c)
}

// majority returns the class with the greatest count, the lowest
// class among those tied.
func majority(counts []int) int {
	var class int
	for c, count := range counts {
		if count > counts[class] {
			class = c
		}
	}
	return class
}
