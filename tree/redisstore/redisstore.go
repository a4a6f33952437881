/*
Package redisstore provides a tree.Store backed by a redis DB, so that
trees grown by workers on different machines can be collected into a
forest.
*/
package redisstore

import (
	"context"
	"fmt"

	"github.com/pbanos/grove/tree"
	"gopkg.in/redis.v5"
)

/*
TreeEncodeDecoder is an interface for objects
that allow encoding trees into slices of
bytes and decoding them back to trees.
*/
type TreeEncodeDecoder interface {
	Encode(*tree.Tree) ([]byte, error)
	Decode([]byte) (*tree.Tree, error)
}

type redisStore struct {
	rc      *redis.Client
	prefix  string
	tencdec TreeEncodeDecoder
}

//New builds a tree.Store backed by a redis DB that keeps
//every tree under the key <prefix>:<index>
func New(rc *redis.Client, prefix string, tencdec TreeEncodeDecoder) tree.Store {
	return &redisStore{rc, prefix, tencdec}
}

func (rs *redisStore) Get(ctx context.Context, index int) (*tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := rs.keyFor(index)
	data, err := rs.rc.Get(key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: %v", key, err)
	}
	t, err := rs.tencdec.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: decoding: %v", key, err)
	}
	return t, nil
}

func (rs *redisStore) Store(ctx context.Context, index int, t *tree.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := rs.keyFor(index)
	data, err := rs.tencdec.Encode(t)
	if err != nil {
		return fmt.Errorf("storing tree %q: encoding tree: %v", key, err)
	}
	_, err = rs.rc.Set(key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing tree %q in redis: %v", key, err)
	}
	return nil
}

func (rs *redisStore) Delete(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := rs.keyFor(index)
	_, err := rs.rc.Del(key).Result()
	if err != nil {
		return fmt.Errorf("deleting tree %q from redis: %v", key, err)
	}
	return nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return nil
}

func (rs *redisStore) keyFor(index int) string {
	return fmt.Sprintf("%s:%d", rs.prefix, index)
}
