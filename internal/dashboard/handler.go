package dashboard

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"daylist/internal/model"
)

// Handler bridges collection change events to dashboard broadcasts. It
// satisfies the view notifier contract and keeps running aggregate stats
// for the session.
type Handler struct {
	server *Server
	logger *log.Logger

	mu        sync.Mutex
	total     int
	completed int
	important int
}

// NewHandler creates an event handler that broadcasts through server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		server: server,
		logger: logger,
	}
}

// Seed initializes the aggregate counters from an already-loaded task set
// and broadcasts the initial stats.
func (h *Handler) Seed(tasks []model.Task) {
	h.mu.Lock()
	h.total = len(tasks)
	h.completed = 0
	h.important = 0
	for _, t := range tasks {
		if t.Completed {
			h.completed++
		}
		if t.Important {
			h.important++
		}
	}
	stats := h.statsLocked()
	h.mu.Unlock()

	h.broadcastStats(stats)
}

// TaskChanged broadcasts a task change and refreshed stats.
func (h *Handler) TaskChanged(action string, task model.Task) {
	data := TaskUpdateData{
		TaskID:    task.ID,
		Action:    action,
		Title:     task.Title,
		Completed: task.Completed,
		Important: task.Important,
	}
	if task.ListID != nil {
		data.ListID = *task.ListID
	}
	h.send(MessageTypeTaskUpdate, data)

	h.mu.Lock()
	switch action {
	case "created":
		h.total++
		if task.Completed {
			h.completed++
		}
		if task.Important {
			h.important++
		}
	case "deleted":
		h.total--
		if task.Completed {
			h.completed--
		}
		if task.Important {
			h.important--
		}
	}
	stats := h.statsLocked()
	h.mu.Unlock()

	// Updates can flip flags in either direction; recount lazily on the
	// next Seed rather than tracking per-field deltas here.
	h.broadcastStats(stats)
}

// ListChanged broadcasts a list change.
func (h *Handler) ListChanged(action string, list model.List) {
	h.send(MessageTypeListUpdate, ListUpdateData{
		ListID: list.ID,
		Action: action,
		Title:  list.Title,
	})
}

func (h *Handler) statsLocked() StatsData {
	return StatsData{
		Total:     h.total,
		Completed: h.completed,
		Important: h.important,
	}
}

func (h *Handler) broadcastStats(stats StatsData) {
	h.send(MessageTypeStats, stats)
}

func (h *Handler) send(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("Failed to marshal %s payload: %v", msgType, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	})
}
