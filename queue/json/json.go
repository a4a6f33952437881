/*
Package json encodes queue tasks as JSON documents and decodes them back.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pbanos/grove/queue"
	"github.com/pbanos/grove/tree"
)

/*
TaskEncodeDecoder is an interface for objects
that allow encoding tasks as slices of bytes and decoding
them back to tasks. It is used to serialize tasks into a
representation to store on redis
*/
type TaskEncodeDecoder interface {

	//Encode receives a *queue.Task
	// and returns a slice of bytes with the task encoded or an
	//error if the encoding could not be performed for
	//some reason.
	Encode(context.Context, *queue.Task) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *queue.Task decoded from the slice of bytes
	//or an error if the decoding could not be performed
	//for some reason.
	Decode(context.Context, []byte) (*queue.Task, error)
}

type jsonEncodeDecoder struct{}

type jsonTask struct {
	Index   int          `json:"i"`
	Seed    int64        `json:"s"`
	Builder tree.Builder `json:"b"`
}

// New returns a TaskEncodeDecoder that encodes tasks as
// JSON objects with the index of the tree to grow ("i"),
// its seed ("s") and the parameters to grow it ("b").
func New() TaskEncodeDecoder {
	return &jsonEncodeDecoder{}
}

func (jed *jsonEncodeDecoder) Encode(ctx context.Context, t *queue.Task) ([]byte, error) {
	data, err := json.Marshal(&jsonTask{t.Index, t.Seed, t.Builder})
	if err != nil {
		return nil, fmt.Errorf("encoding task as json: %v", err)
	}
	return data, nil
}

func (jed *jsonEncodeDecoder) Decode(ctx context.Context, data []byte) (*queue.Task, error) {
	jt := &jsonTask{}
	err := json.Unmarshal(data, jt)
	if err != nil {
		return nil, fmt.Errorf("decoding task from json: %v", err)
	}
	if jt.Index < 0 {
		return nil, fmt.Errorf("decoding task from json: negative tree index %d", jt.Index)
	}
	return &queue.Task{Index: jt.Index, Seed: jt.Seed, Builder: jt.Builder}, nil
}
