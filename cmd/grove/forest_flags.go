package main

import (
	"fmt"

	"github.com/pbanos/grove"
	"github.com/spf13/cobra"
)

// forestConfig holds the flags that set the parameters
// to grow a forest
type forestConfig struct {
	configInput string
	values      grove.Config
}

func (fc *forestConfig) addFlags(cmd *cobra.Command) {
	d := grove.DefaultConfig()
	cmd.Flags().StringVar(&(fc.configInput), "config", "", "path to a YML file with the parameters to grow the forest, overridden by the flags below")
	cmd.Flags().Uint32VarP(&(fc.values.TreeCount), "trees", "n", d.TreeCount, "number of trees in the forest")
	cmd.Flags().Uint32VarP(&(fc.values.FeaturesPerSplit), "features-per-split", "f", d.FeaturesPerSplit, "number of candidate features drawn at random for every split")
	cmd.Flags().Uint32VarP(&(fc.values.MaxDepth), "max-depth", "d", d.MaxDepth, "maximum depth of the trees")
	cmd.Flags().Uint64VarP(&(fc.values.Seed), "seed", "s", d.Seed, "seed for the random choices made growing the forest")
	cmd.Flags().IntVar(&(fc.values.MinSplit), "min-split", d.MinSplit, "minimum number of rows a node needs to be split")
	cmd.Flags().IntVarP(&(fc.values.Workers), "workers", "w", d.Workers, "number of goroutines growing trees (defaults to 0: one per CPU)")
	cmd.Flags().StringVar(&(fc.values.Criterion), "criterion", d.Criterion, "impurity criterion for splits: gini or entropy")
	cmd.Flags().Float64Var(&(fc.values.MinimumGain), "min-gain", d.MinimumGain, "decrease of impurity a split must exceed to be made")
}

/*
config returns the configuration to grow the forest: the one in the
config file (or the default one without it) with the values of the
flags set in the command line.
*/
func (fc *forestConfig) config(cmd *cobra.Command) (*grove.Config, error) {
	c := grove.DefaultConfig()
	if fc.configInput != "" {
		var err error
		c, err = grove.LoadConfig(fc.configInput)
		if err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"trees", func() { c.TreeCount = fc.values.TreeCount }},
		{"features-per-split", func() { c.FeaturesPerSplit = fc.values.FeaturesPerSplit }},
		{"max-depth", func() { c.MaxDepth = fc.values.MaxDepth }},
		{"seed", func() { c.Seed = fc.values.Seed }},
		{"min-split", func() { c.MinSplit = fc.values.MinSplit }},
		{"workers", func() { c.Workers = fc.values.Workers }},
		{"criterion", func() { c.Criterion = fc.values.Criterion }},
		{"min-gain", func() { c.MinimumGain = fc.values.MinimumGain }},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			o.apply()
		}
	}
	return c, nil
}

func (fc *forestConfig) Validate() error {
	if fc.values.Workers < 0 {
		return fmt.Errorf("workers flag cannot be negative")
	}
	return nil
}
