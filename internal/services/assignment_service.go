package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/ArowuTest/ema-randomizer/internal/draw"
	"github.com/ArowuTest/ema-randomizer/internal/models"
	"github.com/ArowuTest/ema-randomizer/internal/repositories"
)

// Compile-time check to ensure AssignmentServiceImpl implements AssignmentService
var _ AssignmentService = (*AssignmentServiceImpl)(nil)

// AssignmentOptions controls a run
type AssignmentOptions struct {
	ProjectID      string
	Fields         models.FieldNames
	BoundScope     models.BoundScope
	MaxAttempts    int
	AbortOnInvalid bool // stop the whole run at the first invalid participant
	DryRun         bool // draw and log, but write nothing to the directory
}

// AssignmentServiceImpl walks every participant and category and issues the next value
type AssignmentServiceImpl struct {
	directory repositories.ParticipantDirectory
	auditRepo repositories.DrawAuditRepository
	source    draw.Source
	opts      AssignmentOptions
	now       func() time.Time
}

// NewAssignmentService creates a new AssignmentServiceImpl. auditRepo may be nil.
func NewAssignmentService(
	directory repositories.ParticipantDirectory,
	auditRepo repositories.DrawAuditRepository,
	source draw.Source,
	opts AssignmentOptions,
) *AssignmentServiceImpl {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = draw.DefaultMaxAttempts
	}
	if !opts.BoundScope.Valid() {
		opts.BoundScope = models.BoundScopeParticipant
	}
	return &AssignmentServiceImpl{
		directory: directory,
		auditRepo: auditRepo,
		source:    source,
		opts:      opts,
		now:       time.Now,
	}
}

// Run performs one assignment run. Participants and categories are processed strictly in
// sequence. The returned report is non-nil even when an error is returned.
func (s *AssignmentServiceImpl) Run(ctx context.Context) (report *models.RunReport, err error) {
	report = models.NewRunReport(uuid.NewString(), s.now(), s.opts.DryRun)
	log := slog.With("runId", report.RunID, "dryRun", s.opts.DryRun)
	log.Info("Assignment run started", "projectId", s.opts.ProjectID, "boundScope", s.opts.BoundScope)

	defer func() {
		report.FinishedAt = s.now()
		if err != nil {
			report.Error = err.Error()
			log.Error("Assignment run failed", "error", err)
		} else {
			log.Info("Assignment run finished",
				"participants", report.Participants, "processed", report.Processed,
				"draws", report.Draws, "resets", report.Resets, "skipped", report.Skipped,
				"failures", len(report.Failures))
		}
		if s.auditRepo != nil {
			if saveErr := s.auditRepo.SaveRun(ctx, report); saveErr != nil {
				log.Warn("Failed to save run report", "error", saveErr)
			}
		}
	}()

	token, err := s.directory.GetAccessToken(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if token == "" {
		return report, ErrAuthentication
	}

	participants, err := s.directory.ListParticipants(ctx, token, s.opts.ProjectID)
	if err != nil {
		return report, fmt.Errorf("failed to list participants: %w", err)
	}
	report.Participants = len(participants)

	for _, participant := range participants {
		if err := s.assignParticipant(ctx, token, participant, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// assignParticipant validates one participant and draws every declared category
func (s *AssignmentServiceImpl) assignParticipant(ctx context.Context, token string, p models.Participant, report *models.RunReport) error {
	count, err := s.categoryCount(p)
	var invalid *ValidationError
	if errors.As(err, &invalid) {
		return s.failParticipant(ctx, token, p, invalid, report)
	}

	for index := 1; index <= count; index++ {
		if err := s.assignCategory(ctx, token, p, index, report); err != nil {
			return err
		}
	}
	report.Processed++
	return nil
}

// categoryCount parses the category count field. Absent or non-integer values are invalid.
func (s *AssignmentServiceImpl) categoryCount(p models.Participant) (int, error) {
	raw, _ := p.Field(s.opts.Fields.Categories)
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{ParticipantID: p.ID, Field: s.opts.Fields.Categories, Value: raw}
	}
	return count, nil
}

// failParticipant writes the validation message into the participant's status field
func (s *AssignmentServiceImpl) failParticipant(ctx context.Context, token string, p models.Participant, validation *ValidationError, report *models.RunReport) error {
	report.Failures = append(report.Failures, models.ValidationFailure{
		ParticipantID: p.ID,
		Field:         validation.Field,
		Value:         validation.Value,
		Message:       models.StatusInvalidCategoryMsg,
	})
	slog.Warn("Participant failed validation", "participantId", p.ID, "field", validation.Field, "value", validation.Value)

	if !s.opts.DryRun {
		patch := models.NewParticipantPatch(p.ID)
		patch.Set(s.opts.Fields.Status, models.StatusInvalidCategoryMsg)
		if err := s.directory.UpdateParticipant(ctx, token, s.opts.ProjectID, patch); err != nil {
			return &SubmissionError{ParticipantID: p.ID, Err: err}
		}
	}

	if s.opts.AbortOnInvalid {
		report.Aborted = true
		return validation
	}
	return nil
}

// assignCategory draws the next value for one category and submits it
func (s *AssignmentServiceImpl) assignCategory(ctx context.Context, token string, p models.Participant, index int, report *models.RunReport) error {
	fields := s.opts.Fields
	historyKey := fields.HistoryKey(index)
	issuedKey := fields.IssuedKey(index)
	bound := s.bound(p, index)

	raw, _ := p.Field(historyKey)
	result, err := draw.DrawWithReset(s.source, draw.SplitHistory(raw), bound, s.opts.MaxAttempts)
	if errors.Is(err, draw.ErrEmptyPool) {
		report.Skipped++
		slog.Warn("No values to draw, category skipped", "participantId", p.ID, "category", index, "bound", bound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("draw category %d for participant %s: %w", index, p.ID, err)
	}
	if result.Reset {
		report.Resets++
		slog.Info("Draw pool exhausted, history reset", "participantId", p.ID, "category", index, "bound", bound)
	}

	history := draw.JoinHistory(result.History)
	patch := models.NewParticipantPatch(p.ID)
	patch.Set(historyKey, history)
	patch.Set(issuedKey, strconv.Itoa(result.Value))

	if s.opts.DryRun {
		slog.Info("Dry run draw", "participantId", p.ID, "category", index, "value", result.Value, "history", history)
	} else if err := s.directory.UpdateParticipant(ctx, token, s.opts.ProjectID, patch); err != nil {
		return &SubmissionError{ParticipantID: p.ID, Category: index, Err: err}
	}
	report.Draws++

	if s.auditRepo != nil {
		record := &models.DrawRecord{
			RunID:         report.RunID,
			ParticipantID: p.ID,
			Category:      index,
			Value:         result.Value,
			History:       history,
			Bound:         bound,
			Reset:         result.Reset,
			DryRun:        s.opts.DryRun,
			CreatedAt:     s.now(),
		}
		if err := s.auditRepo.RecordDraw(ctx, record); err != nil {
			slog.Warn("Failed to record draw", "participantId", p.ID, "category", index, "error", err)
		}
	}
	return nil
}

// bound returns the draw bound for a category according to the bound scope.
// Missing, malformed or negative values read as 0.
func (s *AssignmentServiceImpl) bound(p models.Participant, index int) int {
	if s.opts.BoundScope == models.BoundScopeCategory {
		if raw, ok := p.Field(s.opts.Fields.BoundKey(index)); ok && strings.TrimSpace(raw) != "" {
			return parseBound(raw)
		}
	}
	raw, _ := p.Field(s.opts.Fields.Bound)
	return parseBound(raw)
}

func parseBound(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
