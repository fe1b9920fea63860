package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/redis/go-redis/v9"
)

// Journal is the idempotency guard consulted before every chain-mutating
// action. A restarted worker checks the journal before initiating,
// revealing or refunding so a swap is never submitted twice.
type Journal interface {
	// Done reports whether the action already reached the chain.
	Done(action swap.Action, swapID string, side swap.Side) (bool, error)

	// Record marks the action as submitted.
	Record(action swap.Action, swapID string, side swap.Side) error
}

func journalKey(action swap.Action, swapID string, side swap.Side) string {
	return fmt.Sprintf("%v-%v-%v", swapID, side, action)
}

type redisJournal struct {
	client *redis.Client
}

// NewRedisJournal connects to the redis instance behind the URL. Entries
// have no TTL; swap records are never deleted and neither are their action
// marks.
func NewRedisJournal(redisURL string) (Journal, error) {
	parsedURL, err := url.Parse(redisURL)
	if err != nil {
		return nil, err
	}
	redisPassword, _ := parsedURL.User.Password()
	client := redis.NewClient(&redis.Options{
		Addr:     parsedURL.Host,
		Password: redisPassword,
		DB:       0, // Use default DB.
	})
	return redisJournal{client: client}, nil
}

func (rj redisJournal) Done(action swap.Action, swapID string, side swap.Side) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := rj.client.Get(ctx, journalKey(action, swapID, side)).Bool()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return ok, err
}

func (rj redisJournal) Record(action swap.Action, swapID string, side swap.Side) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return rj.client.Set(ctx, journalKey(action, swapID, side), true, 0).Err()
}

type memoryJournal struct {
	mu      sync.Mutex
	actions map[string]struct{}
}

// NewMemoryJournal keeps action marks in memory. It protects against
// duplicate submissions within a process lifetime only, so it is meant for
// tests and single-shot tooling; daemons should use the redis journal.
func NewMemoryJournal() Journal {
	return &memoryJournal{actions: map[string]struct{}{}}
}

func (mj *memoryJournal) Done(action swap.Action, swapID string, side swap.Side) (bool, error) {
	mj.mu.Lock()
	defer mj.mu.Unlock()
	_, ok := mj.actions[journalKey(action, swapID, side)]
	return ok, nil
}

func (mj *memoryJournal) Record(action swap.Action, swapID string, side swap.Side) error {
	mj.mu.Lock()
	defer mj.mu.Unlock()
	mj.actions[journalKey(action, swapID, side)] = struct{}{}
	return nil
}
