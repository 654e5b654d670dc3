package repositories

import (
	"context"

	"github.com/ArowuTest/ema-randomizer/internal/models"
)

// ParticipantDirectory defines the operations on the external participant directory,
// the system of record for participant custom fields
type ParticipantDirectory interface {
	// GetAccessToken authenticates against the directory. An empty token is an authentication failure.
	GetAccessToken(ctx context.Context) (string, error)

	// ListParticipants returns a full snapshot of the project's participants
	ListParticipants(ctx context.Context, token, projectID string) ([]models.Participant, error)

	// UpdateParticipant applies a partial update; only the patch's custom fields are modified
	UpdateParticipant(ctx context.Context, token, projectID string, patch models.ParticipantPatch) error
}

// DrawAuditRepository defines the interface for the draw audit trail
type DrawAuditRepository interface {
	RecordDraw(ctx context.Context, record *models.DrawRecord) error
	SaveRun(ctx context.Context, report *models.RunReport) error
	FindRecentRuns(ctx context.Context, limit int) ([]*models.RunReport, error)
	FindDrawsByParticipant(ctx context.Context, participantID string) ([]*models.DrawRecord, error)
}
