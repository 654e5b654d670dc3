package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoundScope selects where the draw bound of a category is read from
type BoundScope string

const (
	// BoundScopeParticipant reads one bound field shared by every category of a participant
	BoundScopeParticipant BoundScope = "participant"
	// BoundScopeCategory reads bound field + category index, falling back to the participant bound
	BoundScopeCategory BoundScope = "category"
)

// Valid reports whether the scope is a known value
func (s BoundScope) Valid() bool {
	return s == BoundScopeParticipant || s == BoundScopeCategory
}

// Participant status values
const (
	StatusPassed             = "passed"
	StatusInvalidCategoryMsg = "failed - Check value for EMA Category. It should be an Integer. Make sure there are no leading or trailing spaces"
)

// ValidationFailure describes a participant that could not be processed
type ValidationFailure struct {
	ParticipantID string `bson:"participantId" json:"participantId"`
	Field         string `bson:"field" json:"field"`
	Value         string `bson:"value" json:"value"`
	Message       string `bson:"message" json:"message"`
}

// RunReport summarises one assignment run
type RunReport struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	RunID        string              `bson:"runId" json:"runId"`
	StartedAt    time.Time           `bson:"startedAt" json:"startedAt"`
	FinishedAt   time.Time           `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
	DryRun       bool                `bson:"dryRun" json:"dryRun"`
	Participants int                 `bson:"participants" json:"participants"`
	Processed    int                 `bson:"processed" json:"processed"`
	Draws        int                 `bson:"draws" json:"draws"`
	Resets       int                 `bson:"resets" json:"resets"`
	Skipped      int                 `bson:"skipped" json:"skipped"`
	Failures     []ValidationFailure `bson:"failures" json:"failures"`
	Aborted      bool                `bson:"aborted" json:"aborted"`
	Error        string              `bson:"error,omitempty" json:"error,omitempty"`
}

// NewRunReport starts a report for a run
func NewRunReport(runID string, startedAt time.Time, dryRun bool) *RunReport {
	return &RunReport{
		RunID:     runID,
		StartedAt: startedAt,
		DryRun:    dryRun,
		Failures:  []ValidationFailure{},
	}
}

// Succeeded reports whether the run finished without errors or validation failures
func (r *RunReport) Succeeded() bool {
	return r.Error == "" && len(r.Failures) == 0
}

// DrawRecord is the audit entry for one issued value
type DrawRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RunID         string             `bson:"runId" json:"runId"`
	ParticipantID string             `bson:"participantId" json:"participantId"`
	Category      int                `bson:"category" json:"category"`
	Value         int                `bson:"value" json:"value"`
	History       string             `bson:"history" json:"history"`
	Bound         int                `bson:"bound" json:"bound"`
	Reset         bool               `bson:"reset" json:"reset"`
	DryRun        bool               `bson:"dryRun" json:"dryRun"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
