package inputrecord

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/pbanos/grove/feature"
)

type recordingRequester struct {
	requested []string
	rejected  []string
}

func (rr *recordingRequester) RequestValueFor(f feature.Feature) error {
	rr.requested = append(rr.requested, f.Name())
	return nil
}

func (rr *recordingRequester) RejectValueFor(f feature.Feature, v string, _ error) error {
	rr.rejected = append(rr.rejected, f.Name()+"="+v)
	return nil
}

func TestRead(t *testing.T) {
	features, _ := feature.Passenger()
	rr := &recordingRequester{}
	input := "first\n1\nwoman\nfemale\n0\n2\n"
	records, err := NewSource(strings.NewReader(input), features, rr).Records(context.Background())
	if err != nil {
		t.Fatalf("Records returned error: %v", err)
	}
	expected := []feature.Record{{"Pclass": "1", "Sex": "female", "SibSp": "0", "Parch": "2"}}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("expected %v, got %v", expected, records)
	}
	if !reflect.DeepEqual(rr.requested, []string{"Pclass", "Sex", "SibSp", "Parch"}) {
		t.Errorf("unexpected requests %v", rr.requested)
	}
	if !reflect.DeepEqual(rr.rejected, []string{"Pclass=first", "Sex=woman"}) {
		t.Errorf("unexpected rejections %v", rr.rejected)
	}
}

func TestReadEOF(t *testing.T) {
	features, _ := feature.Passenger()
	if _, err := Read(strings.NewReader("1\nmale\n"), features, &recordingRequester{}); err == nil {
		t.Errorf("expected error reading an incomplete record")
	}
}
