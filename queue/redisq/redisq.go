/*
Package redisq provides a queue.Queue backed by a redis DB, so that
workers on different processes or machines can share the tasks to grow
a forest.

Every operation on the queue runs as a single Lua script, so workers never
see a task in two states or in none. The queue keeps these keys under its id:
  * id:pending, a sorted set with the IDs of the pending tasks, scored by
  the order in which they became pending
  * id:running, a sorted set with the IDs of the running tasks, scored by
  the time in milliseconds at which they time out
  * id:tasks, a hash with the encoded tasks by their ID
  * id:seq, the counter that orders pending tasks

Running tasks whose time is up are moved back to the end of the pending set
by the next Pull or Count on the queue, so trees a failing worker was growing
are eventually grown by another one.
*/
package redisq

import (
	"context"
	"fmt"
	"time"

	"github.com/pbanos/grove/queue"
	redis "gopkg.in/redis.v5"
)

/*
EncodeDecoder is an interface for objects
that allow encoding tasks as slices of bytes and decoding
them back to tasks. It is used to serialize tasks into a
representation to store on redis
*/
type EncodeDecoder interface {
	Encode(context.Context, *queue.Task) ([]byte, error)
	Decode(context.Context, []byte) (*queue.Task, error)
}

type redisQ struct {
	id         string
	rc         *redis.Client
	allTaskCtx context.Context
	allTaskCF  context.CancelFunc
	taskMaxRun time.Duration
	EncodeDecoder
}

// All scripts take the keys pending, running, tasks and seq in that order.
const requeueTimedOut = `
local timedOut = redis.call("ZRANGEBYSCORE", KEYS[2], "-inf", ARGV[1])
for _, id in ipairs(timedOut) do
	redis.call("ZREM", KEYS[2], id)
	redis.call("ZADD", KEYS[1], redis.call("INCR", KEYS[4]), id)
end
`

// ARGV: task ID, encoded task
var pushScript = redis.NewScript(`
if redis.call("HSETNX", KEYS[3], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call("ZADD", KEYS[1], redis.call("INCR", KEYS[4]), ARGV[1])
return 1
`)

// ARGV: now, timeout score for the pulled task
var pullScript = redis.NewScript(requeueTimedOut + `
local ids = redis.call("ZRANGE", KEYS[1], 0, 0)
if #ids == 0 then
	return false
end
local id = ids[1]
redis.call("ZREM", KEYS[1], id)
redis.call("ZADD", KEYS[2], ARGV[2], id)
local data = redis.call("HGET", KEYS[3], id)
if not data then
	data = ""
end
return {id, data}
`)

// ARGV: task ID
var dropScript = redis.NewScript(`
if redis.call("ZREM", KEYS[2], ARGV[1]) == 0 then
	return 0
end
redis.call("ZADD", KEYS[1], redis.call("INCR", KEYS[4]), ARGV[1])
return 1
`)

// ARGV: task ID
var completeScript = redis.NewScript(`
local removed = redis.call("ZREM", KEYS[2], ARGV[1]) + redis.call("ZREM", KEYS[1], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
if redis.call("ZCARD", KEYS[1]) + redis.call("ZCARD", KEYS[2]) == 0 then
	redis.call("DEL", KEYS[4])
end
return removed
`)

// ARGV: now
var countScript = redis.NewScript(requeueTimedOut + `
return {redis.call("ZCARD", KEYS[1]), redis.call("ZCARD", KEYS[2])}
`)

/*
New returns a queue.Queue that keeps its tasks on the given redis client
under keys prefixed with the given id. Tasks are encoded and decoded with
the given EncodeDecoder.

A task pulled from the queue that is neither completed nor dropped within
taskMaxRun is made pending again, and the context Pull returns with it
times out. A zero taskMaxRun lets tasks run forever.

The returned queue is secure for concurrent use by multiple goroutines.
*/
func New(id string, rc *redis.Client, taskMaxRun time.Duration, encDec EncodeDecoder) queue.Queue {
	ctx, cf := context.WithCancel(context.Background())
	return &redisQ{
		id:            id,
		rc:            rc,
		allTaskCtx:    ctx,
		allTaskCF:     cf,
		taskMaxRun:    taskMaxRun,
		EncodeDecoder: encDec,
	}
}

// Push takes a task and stores it in the queue or
// returns an error, also when a task with its ID
// is already pending or running.
func (rq *redisQ) Push(ctx context.Context, t *queue.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := rq.Encode(ctx, t)
	if err != nil {
		return fmt.Errorf("pushing task %s to queue: %v", t.ID(), err)
	}
	added, err := pushScript.Run(rq.rc, rq.keys(), t.ID(), string(data)).Result()
	if err != nil {
		return fmt.Errorf("pushing task %s to queue: %v", t.ID(), err)
	}
	if added != int64(1) {
		return fmt.Errorf("pushing task %s to queue: already in queue %q", t.ID(), rq.id)
	}
	return nil
}

// Pull returns the task that has been pending for longest,
// a context that times out when the task has run for longer
// than taskMaxRun (if not zero) and the function to release
// it, or an error. If there are no tasks to pull, it returns
// 4 nil values.
func (rq *redisQ) Pull(ctx context.Context) (*queue.Task, context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	now := time.Now()
	timeout := "+inf"
	if rq.taskMaxRun > 0 {
		timeout = fmt.Sprint(millis(now.Add(rq.taskMaxRun)))
	}
	v, err := pullScript.Run(rq.rc, rq.keys(), millis(now), timeout).Result()
	if err == redis.Nil {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pulling task from queue %q: %v", rq.id, err)
	}
	pulled, ok := v.([]interface{})
	if !ok || len(pulled) != 2 {
		return nil, nil, nil, fmt.Errorf("pulling task from queue %q: unexpected reply %v", rq.id, v)
	}
	id, _ := pulled[0].(string)
	data, _ := pulled[1].(string)
	t, err := rq.Decode(ctx, []byte(data))
	if err != nil {
		rq.Complete(ctx, id)
		return nil, nil, nil, fmt.Errorf("pulling task %s from queue %q: discarded undecodable task: %v", id, rq.id, err)
	}
	var tctx context.Context
	var tcf context.CancelFunc
	if rq.taskMaxRun > 0 {
		tctx, tcf = context.WithDeadline(rq.allTaskCtx, now.Add(rq.taskMaxRun))
	} else {
		tctx, tcf = context.WithCancel(rq.allTaskCtx)
	}
	return t, tctx, tcf, nil
}

// Drop takes the ID for a running task and makes it
// pending again. Tasks that are not running are left
// as they are.
func (rq *redisQ) Drop(ctx context.Context, id string) error {
	_, err := dropScript.Run(rq.rc, rq.keys(), id).Result()
	if err != nil {
		return fmt.Errorf("dropping %s: %v", id, err)
	}
	return nil
}

// Complete takes the ID for a task and removes it
// from the queue along with its data.
func (rq *redisQ) Complete(ctx context.Context, id string) error {
	_, err := completeScript.Run(rq.rc, rq.keys(), id).Result()
	if err != nil {
		return fmt.Errorf("completing %s: %v", id, err)
	}
	return nil
}

// Count returns the number of
// pending and running tasks in the queue
// or an error
func (rq *redisQ) Count(ctx context.Context) (int, int, error) {
	v, err := countScript.Run(rq.rc, rq.keys(), millis(time.Now())).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("counting tasks: %v", err)
	}
	counts, ok := v.([]interface{})
	if !ok || len(counts) != 2 {
		return 0, 0, fmt.Errorf("counting tasks: unexpected reply %v", v)
	}
	p, ok := counts[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("counting tasks: cannot extract integer pending tasks count from %v (%T)", counts[0], counts[0])
	}
	r, ok := counts[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("counting tasks: cannot extract integer running tasks count from %v (%T)", counts[1], counts[1])
	}
	return int(p), int(r), nil
}

// Stop cancels the contexts of pulled tasks
func (rq *redisQ) Stop(context.Context) error {
	rq.allTaskCF()
	return nil
}

func (rq *redisQ) String() string {
	return fmt.Sprintf("{redisQ %s}", rq.id)
}

func (rq *redisQ) keys() []string {
	return []string{
		rq.id + ":pending",
		rq.id + ":running",
		rq.id + ":tasks",
		rq.id + ":seq",
	}
}

func millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
