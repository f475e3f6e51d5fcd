package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/effects"
)

func newSession(t *testing.T, ttl time.Duration) *Session {
	t.Helper()
	e, _ := effects.Lookup(effects.CartoonName)
	g, err := e.Build(dag.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	return New(g, e.Definition(), ttl)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	sess := newSession(t, time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if err := sess.Do(func(*dag.Graph) error { return nil }); !errors.Is(err, ErrExpired) {
		t.Errorf("Do() after Delete err = %v, want ErrExpired", err)
	}
	if err := store.Delete(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	short := newSession(t, time.Nanosecond)
	long := newSession(t, time.Hour)
	store.Set(ctx, short)
	store.Set(ctx, long)
	time.Sleep(time.Millisecond)

	n, err := store.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Errorf("Cleanup() = %d, %v, want 1", n, err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	expired := newSession(t, time.Nanosecond)
	store.Set(ctx, expired)
	time.Sleep(time.Millisecond)
	if _, err := store.Get(ctx, expired.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get(expired) err = %v, want ErrExpired", err)
	}
	if store.Len() != 1 {
		t.Errorf("expired session should be dropped on Get, Len() = %d", store.Len())
	}
}

func TestDoExtendsExpiry(t *testing.T) {
	sess := newSession(t, time.Hour)
	before := sess.ExpiresAt()
	time.Sleep(time.Millisecond)
	sess.Do(func(*dag.Graph) error { return nil })
	if !sess.ExpiresAt().After(before) {
		t.Error("Do() should extend the session")
	}
}

func TestDoSerializes(t *testing.T) {
	sess := newSession(t, time.Hour)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.Do(func(g *dag.Graph) error {
				if i%2 == 0 {
					_, err := g.SetMode(effects.BlendMultiply)
					return err
				}
				return g.Apply("sat", float64(i%15))
			})
		}()
	}
	wg.Wait()

	sess.Do(func(g *dag.Graph) error {
		if res := g.Validate(); !res.OK() {
			t.Errorf("Validate() after concurrent edits = %v", res.Issues)
		}
		return nil
	})
}

func TestSetReplacesAndCloses(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	first := newSession(t, time.Hour)
	store.Set(ctx, first)

	second := newSession(t, time.Hour)
	second.ID = first.ID
	store.Set(ctx, second)

	if err := first.Do(func(*dag.Graph) error { return nil }); !errors.Is(err, ErrExpired) {
		t.Errorf("replaced session should be closed, Do() err = %v", err)
	}
}
