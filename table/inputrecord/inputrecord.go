/*
Package inputrecord reads records interactively, a value per line, from an
io.Reader.
*/
package inputrecord

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pbanos/grove/feature"
	"github.com/pbanos/grove/table"
)

/*
FeatureValueRequester represents a way to ask
for feature values and reject the given values.
*/
type FeatureValueRequester interface {
	RequestValueFor(feature.Feature) error
	RejectValueFor(feature.Feature, string, error) error
}

type inputSource struct {
	r         io.Reader
	features  []feature.Feature
	requester FeatureValueRequester
}

/*
Read takes an io.Reader, a slice of features and a FeatureValueRequester
and returns a record with a value for each of the features or an error.

Values are read in the order of the features, each first requested with
the FeatureValueRequester and then read from a line of the reader. Lines
are read until one with a value the feature can encode is found: the rest
are rejected with the FeatureValueRequester's RejectValueFor method, which
may return an error to stop reading.
*/
func Read(r io.Reader, features []feature.Feature, requester FeatureValueRequester) (feature.Record, error) {
	scanner := bufio.NewScanner(r)
	record := make(feature.Record, len(features))
	for _, f := range features {
		err := requester.RequestValueFor(f)
		if err != nil {
			return nil, err
		}
		v, err := readValue(scanner, f, requester)
		if err != nil {
			return nil, err
		}
		record[f.Name()] = v
	}
	return record, nil
}

/*
NewSource takes an io.Reader, a slice of features and a FeatureValueRequester
and returns a table.Source with a single record obtained with Read.
*/
func NewSource(r io.Reader, features []feature.Feature, requester FeatureValueRequester) table.Source {
	return &inputSource{r, features, requester}
}

func (is *inputSource) Records(ctx context.Context) ([]feature.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, err := Read(is.r, is.features, is.requester)
	if err != nil {
		return nil, err
	}
	return []feature.Record{record}, nil
}

func readValue(scanner *bufio.Scanner, f feature.Feature, requester FeatureValueRequester) (string, error) {
	for scanner.Scan() {
		line := scanner.Text()
		_, err := f.Encode(line)
		if err == nil {
			return line, nil
		}
		err = requester.RejectValueFor(f, line, err)
		if err != nil {
			return "", err
		}
	}
	err := scanner.Err()
	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("EOF when requesting value for %s", f.Name())
}
