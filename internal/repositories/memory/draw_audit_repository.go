package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/ema-randomizer/internal/models"
	"github.com/ArowuTest/ema-randomizer/internal/repositories"
)

// DrawAuditRepository keeps the audit trail in process memory. It is used when no
// MongoDB URI is configured.
type DrawAuditRepository struct {
	mu    sync.RWMutex
	draws []models.DrawRecord
	runs  map[string]models.RunReport
}

// NewDrawAuditRepository creates a new in-memory DrawAuditRepository
func NewDrawAuditRepository() repositories.DrawAuditRepository {
	return &DrawAuditRepository{runs: map[string]models.RunReport{}}
}

// RecordDraw stores a copy of the record
func (r *DrawAuditRepository) RecordDraw(ctx context.Context, record *models.DrawRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws = append(r.draws, *record)
	return nil
}

// SaveRun inserts or replaces the report for its run id
func (r *DrawAuditRepository) SaveRun(ctx context.Context, report *models.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *report
	stored.Failures = append([]models.ValidationFailure(nil), report.Failures...)
	r.runs[report.RunID] = stored
	return nil
}

// FindRecentRuns returns runs newest first
func (r *DrawAuditRepository) FindRecentRuns(ctx context.Context, limit int) ([]*models.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := make([]*models.RunReport, 0, len(r.runs))
	for _, run := range r.runs {
		run := run
		runs = append(runs, &run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// FindDrawsByParticipant returns a participant's draws in insertion order
func (r *DrawAuditRepository) FindDrawsByParticipant(ctx context.Context, participantID string) ([]*models.DrawRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var draws []*models.DrawRecord
	for i := range r.draws {
		if r.draws[i].ParticipantID == participantID {
			record := r.draws[i]
			draws = append(draws, &record)
		}
	}
	return draws, nil
}
