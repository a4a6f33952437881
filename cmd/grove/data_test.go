package main

import (
	"testing"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/feature/yaml"
	"github.com/pbanos/grove/tree"
	"github.com/spf13/cobra"
)

func TestInputKinds(t *testing.T) {
	testCases := []struct {
		input    string
		postgres bool
		mongo    bool
	}{
		{"postgresql://user@localhost/titanic", true, false},
		{"postgres://localhost/titanic", true, false},
		{"mongodb://localhost/titanic", false, true},
		{"data/train.csv", false, false},
		{"titanic.db", false, false},
		{"", false, false},
	}
	for _, tc := range testCases {
		if got := isPostgreSQL(tc.input); got != tc.postgres {
			t.Errorf("isPostgreSQL(%q): expected %v, got %v", tc.input, tc.postgres, got)
		}
		if got := isMongoDB(tc.input); got != tc.mongo {
			t.Errorf("isMongoDB(%q): expected %v, got %v", tc.input, tc.mongo, got)
		}
	}
}

func TestCheckForest(t *testing.T) {
	md := yaml.DefaultMetadata(false)
	f := grove.NewForest([]*tree.Tree{tree.New(tree.NewLeaf(1), 4)}, 4)
	if err := checkForest(f, md); err != nil {
		t.Errorf("expected forest without names to match, got %v", err)
	}
	f.Names = []string{"Pclass", "Sex", "#2", "Parch"}
	if err := checkForest(f, md); err != nil {
		t.Errorf("expected forest with matching names to match, got %v", err)
	}
	f.Names = []string{"Pclass", "Sex", "Parch", "SibSp"}
	if err := checkForest(f, md); err == nil {
		t.Errorf("expected error for features in a different order")
	}
	narrow := grove.NewForest([]*tree.Tree{tree.New(tree.NewLeaf(1), 3)}, 3)
	if _, ok := checkForest(narrow, md).(*tree.ShapeMismatchError); !ok {
		t.Errorf("expected *tree.ShapeMismatchError for a forest over 3 features")
	}
}

func TestForestConfigOverrides(t *testing.T) {
	fc := &forestConfig{}
	cmd := &cobra.Command{}
	fc.addFlags(cmd)
	err := cmd.Flags().Parse([]string{"--trees", "7", "--criterion", "entropy"})
	if err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	c, err := fc.config(cmd)
	if err != nil {
		t.Fatalf("config returned error: %v", err)
	}
	expected := grove.DefaultConfig()
	expected.TreeCount = 7
	expected.Criterion = "entropy"
	if *c != *expected {
		t.Errorf("expected %v, got %v", expected, c)
	}
}
