package service

import (
	"sync"
	"time"
)

const progressBufferSize = 16

// ProgressEvent is one step of a grading run, fanned out to websocket
// subscribers watching the task.
type ProgressEvent struct {
	TaskID  string    `json:"task_id"`
	UserID  int64     `json:"user_id,omitempty"`
	Stage   string    `json:"stage"`
	Message string    `json:"message,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// Grading run stages.
const (
	StageStarted   = "started"
	StageEvaluated = "evaluated"
	StageSaved     = "saved"
	StageFailed    = "failed"
	StageDone      = "done"
)

// ProgressHub fans grading progress out to subscribers keyed by task. A
// slow subscriber drops events rather than blocking the grading run.
type ProgressHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan ProgressEvent]struct{}
}

// NewProgressHub builds an empty hub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subscribers: make(map[string]map[chan ProgressEvent]struct{}),
	}
}

// Subscribe registers a listener for one task's events. The returned
// cancel function must be called to release the channel.
func (h *ProgressHub) Subscribe(taskID string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, progressBufferSize)

	h.mu.Lock()
	if h.subscribers[taskID] == nil {
		h.subscribers[taskID] = make(map[chan ProgressEvent]struct{})
	}
	h.subscribers[taskID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[taskID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, taskID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the task. Nil hubs are
// silent, so wiring the hub stays optional.
func (h *ProgressHub) Publish(event ProgressEvent) {
	if h == nil {
		return
	}
	if event.SentAt.IsZero() {
		event.SentAt = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[event.TaskID] {
		select {
		case ch <- event:
		default:
		}
	}
}
