// FILE: internal/service/waiter.go
package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

const (
	// WaitTimeout bounds one long-poll
	WaitTimeout = 25 * time.Second
)

var errWaitShutdown = errors.New("wait registry shutdown timed out")

// WaitRegistry wakes clients long-polling for a game's next version.
// Every applied, undone or redone action bumps the version.
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*waitRequest
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

type waitRequest struct {
	version int
	done    chan struct{}
	once    sync.Once
	timer   *time.Timer
}

func (r *waitRequest) wake() {
	r.once.Do(func() { close(r.done) })
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
	}
}

// Register returns a channel closed once the game moves past version. It
// is also closed when the game goes away, the wait times out or ctx ends.
func (w *WaitRegistry) Register(ctx context.Context, gameID string, version int) <-chan struct{} {
	req := &waitRequest{
		version: version,
		done:    make(chan struct{}),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		req.wake()
		return req.done
	}

	req.timer = time.AfterFunc(WaitTimeout, req.wake)
	w.waiters[gameID] = append(w.waiters[gameID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			req.wake()
		case <-w.shutdown:
			req.wake()
		case <-req.done:
		}
		w.remove(gameID, req)
	}()

	return req.done
}

// Notify wakes every waiter on the game that has not seen version yet
func (w *WaitRegistry) Notify(gameID string, version int) {
	w.mu.Lock()
	list := slices.Clone(w.waiters[gameID])
	w.mu.Unlock()

	for _, req := range list {
		if req.version < version {
			req.wake()
		}
	}
}

// RemoveGame wakes and forgets all waiters on a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	list := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range list {
		req.wake()
	}
}

// Shutdown wakes every waiter and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errWaitShutdown
	}
}

func (w *WaitRegistry) remove(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.waiters[gameID]
	for i, r := range list {
		if r == req {
			w.waiters[gameID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
	req.timer.Stop()
}
