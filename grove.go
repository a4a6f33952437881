/*
Package grove grows random forests of classification trees and uses them to
predict the classes of rows of encoded features.

Forests are grown by seeding a queue with one task per tree and having
workers consume it: every worker draws a bootstrap sample of the training
dataset and grows a tree from it with a source of random numbers seeded
for that tree alone, so the resulting forest only depends on the dataset
and the Config, no matter how many workers take part or where they run.
*/
package grove

import (
	"fmt"
	"io/ioutil"

	"github.com/pbanos/grove/tree"
	yaml "gopkg.in/yaml.v2"
)

/*
Config holds the parameters to grow a forest:
  * TreeCount is the number of trees in the forest.
  * FeaturesPerSplit is the number of candidate features drawn for every split.
  * MaxDepth is the depth at which nodes of the trees become leaves.
  * Seed is the base seed every tree's seed is derived from.
  * MinSplit is the minimum number of rows a node needs to be split.
  * Workers is the number of goroutines growing trees, runtime.NumCPU() if 0.
  * Criterion is the impurity measure, gini or entropy.
  * MinimumGain is the impurity decrease a split must exceed.
*/
type Config struct {
	TreeCount        uint32  `yaml:"tree_count"`
	FeaturesPerSplit uint32  `yaml:"features_per_split"`
	MaxDepth         uint32  `yaml:"max_depth"`
	Seed             uint64  `yaml:"seed"`
	MinSplit         int     `yaml:"min_split"`
	Workers          int     `yaml:"workers"`
	Criterion        string  `yaml:"criterion"`
	MinimumGain      float64 `yaml:"minimum_gain"`
}

// DefaultConfig returns the configuration forests are grown
// with unless told otherwise: 500 trees of depth 5 with a
// single candidate feature per split.
func DefaultConfig() *Config {
	return &Config{
		TreeCount:        500,
		FeaturesPerSplit: 1,
		MaxDepth:         5,
		MinSplit:         tree.DefaultMinSplit,
		Criterion:        string(tree.Gini),
	}
}

/*
LoadConfig takes the path to a YAML file and returns the default
configuration overridden with the values in the file, or an error
if the file cannot be read or has unknown keys.
*/
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forest configuration: %v", err)
	}
	return ParseConfig(data)
}

// ParseConfig is like LoadConfig but takes the YAML
// document instead of the path to its file.
func ParseConfig(data []byte) (*Config, error) {
	c := DefaultConfig()
	err := yaml.UnmarshalStrict(data, c)
	if err != nil {
		return nil, fmt.Errorf("parsing forest configuration: %v", err)
	}
	return c, nil
}

/*
Validate takes the number of features of the training rows and returns a
*tree.ConfigurationError if the configuration cannot grow a forest from them.
*/
func (c *Config) Validate(features int) error {
	if c.TreeCount < 1 {
		return &tree.ConfigurationError{Parameter: "tree count", Reason: "must be at least 1, got 0"}
	}
	if c.Workers < 0 {
		return &tree.ConfigurationError{Parameter: "workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)}
	}
	b := c.Builder()
	return b.Validate(features)
}

// Builder returns the tree.Builder for the trees of the forest
func (c *Config) Builder() tree.Builder {
	return tree.Builder{
		FeaturesPerSplit: int(c.FeaturesPerSplit),
		MaxDepth:         int(c.MaxDepth),
		MinSplit:         c.MinSplit,
		Criterion:        tree.Criterion(c.Criterion),
		MinimumGain:      c.MinimumGain,
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("{Config trees: %d m: %d depth: %d seed: %d min split: %d criterion: %v}", c.TreeCount, c.FeaturesPerSplit, c.MaxDepth, c.Seed, c.MinSplit, tree.Criterion(c.Criterion))
}

// Logger is the interface for the objects growing
// forests can report their progress to.
type Logger interface {
	Logf(format string, a ...interface{})
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}
