package main

import (
	"fmt"
	"time"

	"github.com/pbanos/grove/queue"
	queuejson "github.com/pbanos/grove/queue/json"
	"github.com/pbanos/grove/queue/redisq"
	"github.com/pbanos/grove/tree"
	treejson "github.com/pbanos/grove/tree/json"
	"github.com/pbanos/grove/tree/redisstore"
	"github.com/spf13/cobra"
	redis "gopkg.in/redis.v5"
)

// redisConfig holds the flags to share the tasks to grow
// a forest and the grown trees through a redis DB
type redisConfig struct {
	addr       string
	db         int
	password   string
	id         string
	taskMaxRun time.Duration
}

func (rc *redisConfig) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&(rc.addr), "redis", "", "address (host:port) of a redis server through which workers share the trees to grow")
	cmd.Flags().IntVar(&(rc.db), "redis-db", 0, "number of the redis DB to use")
	cmd.Flags().StringVar(&(rc.password), "redis-password", "", "password for the redis server")
	cmd.Flags().StringVar(&(rc.id), "forest-id", "grove", "prefix for the redis keys of the forest")
	cmd.Flags().DurationVar(&(rc.taskMaxRun), "task-max-run", 10*time.Minute, "time after which a tree not grown by a worker is given to another (0 to wait forever)")
}

func (rc *redisConfig) Validate() error {
	if rc.addr == "" {
		return nil
	}
	if rc.id == "" {
		return fmt.Errorf("forest-id flag cannot be empty")
	}
	if rc.taskMaxRun < 0 {
		return fmt.Errorf("task-max-run flag cannot be negative")
	}
	return nil
}

func (rc *redisConfig) enabled() bool {
	return rc.addr != ""
}

// queueAndStore connects to the redis server and returns a queue
// for the tasks to grow the forest and a store for its trees
func (rc *redisConfig) queueAndStore(l logger) (queue.Queue, tree.Store, func(), error) {
	l.Logf("Connecting to redis at %s...", rc.addr)
	client := redis.NewClient(&redis.Options{Addr: rc.addr, DB: rc.db, Password: rc.password})
	err := client.Ping().Err()
	if err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("connecting to redis at %s: %v", rc.addr, err)
	}
	q := redisq.New(fmt.Sprintf("%s:queue", rc.id), client, rc.taskMaxRun, queuejson.New())
	s := redisstore.New(client, fmt.Sprintf("%s:tree", rc.id), treejson.New())
	return q, s, func() { client.Close() }, nil
}
