// Package coordinator serializes ledger mutations and aggregate
// recomputation per user. At most one mutation runs for a given user at a
// time; later callers for the same user queue in FIFO order. Different
// users never contend.
package coordinator

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
)

type waiter chan struct{}

type userQueue struct {
	active  bool
	waiters []waiter
}

// Coordinator is a keyed FIFO serializer over user IDs.
type Coordinator struct {
	mu    sync.Mutex
	users map[snowflake.ID]*userQueue
}

func New() *Coordinator {
	return &Coordinator{users: make(map[snowflake.ID]*userQueue)}
}

// Do runs fn while holding the user's slot. If the slot is busy, Do waits
// behind earlier callers. Waiting respects ctx; once fn starts it is not
// cancelled (ledger mutations are short and must commit or roll back whole).
func (c *Coordinator) Do(ctx context.Context, userID snowflake.ID, fn func(ctx context.Context) error) error {
	if err := c.acquire(ctx, userID); err != nil {
		return err
	}
	defer c.release(userID)
	return fn(ctx)
}

func (c *Coordinator) acquire(ctx context.Context, userID snowflake.ID) error {
	c.mu.Lock()
	q := c.users[userID]
	if q == nil {
		q = &userQueue{}
		c.users[userID] = q
	}
	if !q.active {
		q.active = true
		c.mu.Unlock()
		return nil
	}
	w := make(waiter)
	q.waiters = append(q.waiters, w)
	c.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		c.abandon(userID, w)
		return ctx.Err()
	}
}

// abandon removes a cancelled waiter. If the slot was already handed to the
// waiter in the meantime, the slot is released onward instead.
func (c *Coordinator) abandon(userID snowflake.ID, w waiter) {
	c.mu.Lock()
	q := c.users[userID]
	if q != nil {
		for i, candidate := range q.waiters {
			if candidate == w {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				c.mu.Unlock()
				return
			}
		}
	}
	c.mu.Unlock()

	// Not in the queue: release already signalled us, pass the slot on.
	<-w
	c.release(userID)
}

func (c *Coordinator) release(userID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.users[userID]
	if q == nil {
		return
	}
	if len(q.waiters) == 0 {
		delete(c.users, userID)
		return
	}
	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	close(next)
}

// InFlight reports whether a mutation currently holds the user's slot.
func (c *Coordinator) InFlight(userID snowflake.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.users[userID]
	return q != nil && q.active
}
