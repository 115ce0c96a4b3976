package chat

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

// ReplyState is the outcome of the current reply watch
type ReplyState struct {
	Pending  bool              `json:"pending"`
	TimedOut bool              `json:"timed_out"`
	Reply    *models.ChatReply `json:"reply,omitempty"`
}

// ReplyWatcher polls the backend for a chat reply after a message is sent.
// Only one watch is active; starting a new one abandons the previous.
type ReplyWatcher struct {
	backend  interfaces.BackendClient
	interval time.Duration
	timeout  time.Duration
	logger   arbor.ILogger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  ReplyState
}

// NewReplyWatcher creates a watcher checking every interval for up to timeout
func NewReplyWatcher(backend interfaces.BackendClient, interval, timeout time.Duration, logger arbor.ILogger) *ReplyWatcher {
	return &ReplyWatcher{
		backend:  backend,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Watch starts waiting for a reply. Results of an earlier watch are discarded.
func (w *ReplyWatcher) Watch(ctx context.Context) {
	watchCtx, cancel := context.WithTimeout(ctx, w.timeout)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.gen++
	gen := w.gen
	w.cancel = cancel
	w.state = ReplyState{Pending: true}
	w.mu.Unlock()

	common.SafeGo(w.logger, "chatReplyWatcher", func() {
		defer cancel()
		w.poll(watchCtx, gen)
	})
}

// State returns the current watch outcome
func (w *ReplyWatcher) State() ReplyState {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := w.state
	if state.Reply != nil {
		reply := *state.Reply
		state.Reply = &reply
	}
	return state
}

// Stop abandons the active watch
func (w *ReplyWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++
	w.state.Pending = false
}

func (w *ReplyWatcher) poll(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.finish(gen, nil, ctx.Err() == context.DeadlineExceeded)
			return
		case <-ticker.C:
			reply, err := w.backend.CheckReply(ctx)
			if err != nil {
				// Keep polling; a reply may still arrive before the timeout
				w.logger.Debug().Err(err).Msg("Chat reply check failed")
				continue
			}
			if reply.HasReply && reply.Message != "" {
				w.finish(gen, reply, false)
				return
			}
		}
	}
}

func (w *ReplyWatcher) finish(gen uint64, reply *models.ChatReply, timedOut bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	w.state = ReplyState{Pending: false, TimedOut: timedOut, Reply: reply}
	w.cancel = nil

	if timedOut {
		w.logger.Warn().Dur("timeout", w.timeout).Msg("No chat reply before timeout")
	}
}
