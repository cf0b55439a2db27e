package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/examflow-ng/paper-service/internal/models"
)

// DefaultAutosaveDelay is the quiet period after the last edit before the
// coalesced write fires.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// AutosaveManager coalesces bursts of editor mutations into one persisted
// write per paper. Each Schedule resets the paper's timer; only the latest
// snapshot is written. An explicit Flush bypasses the debounce.
type AutosaveManager struct {
	save   func(ctx context.Context, actor Actor, paper *models.ExamPaper) (*PaperResponse, error)
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingSave
	closed  bool
}

type pendingSave struct {
	timer *time.Timer
	actor Actor
	paper *models.ExamPaper
}

func NewAutosaveManager(papers PaperService, logger *slog.Logger, delay time.Duration) *AutosaveManager {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &AutosaveManager{
		save:    papers.Save,
		delay:   delay,
		logger:  logger,
		pending: make(map[string]*pendingSave),
	}
}

// Schedule records the latest snapshot of a paper and (re)starts its
// debounce timer.
func (m *AutosaveManager) Schedule(actor Actor, paper *models.ExamPaper) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	if existing, ok := m.pending[paper.ID]; ok {
		existing.timer.Stop()
	}

	id := paper.ID
	m.pending[id] = &pendingSave{
		actor: actor,
		paper: paper,
		timer: time.AfterFunc(m.delay, func() {
			m.fire(id)
		}),
	}
}

// Flush writes a paper's pending snapshot immediately, if any.
func (m *AutosaveManager) Flush(ctx context.Context, paperID string) error {
	m.mu.Lock()
	entry, ok := m.pending[paperID]
	if ok {
		entry.timer.Stop()
		delete(m.pending, paperID)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	_, err := m.save(ctx, entry.actor, entry.paper)
	return err
}

// Pending reports whether a write is queued for the paper.
func (m *AutosaveManager) Pending(paperID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[paperID]
	return ok
}

// Stop flushes every queued write and stops the manager.
func (m *AutosaveManager) Stop(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	remaining := make([]*pendingSave, 0, len(m.pending))
	for id, entry := range m.pending {
		entry.timer.Stop()
		remaining = append(remaining, entry)
		delete(m.pending, id)
	}
	m.mu.Unlock()

	for _, entry := range remaining {
		if _, err := m.save(ctx, entry.actor, entry.paper); err != nil {
			m.logger.Error("Autosave flush on shutdown failed", "paper_id", entry.paper.ID, "error", err)
		}
	}
}

func (m *AutosaveManager) fire(paperID string) {
	m.mu.Lock()
	entry, ok := m.pending[paperID]
	if ok {
		delete(m.pending, paperID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := m.save(ctx, entry.actor, entry.paper); err != nil {
		m.logger.Error("Autosave failed", "paper_id", paperID, "error", err)
		return
	}
	m.logger.Debug("Autosave persisted", "paper_id", paperID)
}
