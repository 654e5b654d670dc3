package services

import (
	"context"

	"github.com/ArowuTest/ema-randomizer/internal/models"
)

// AssignmentService defines the interface for EMA assignment runs
type AssignmentService interface {
	// Run assigns the next value for every category of every participant
	Run(ctx context.Context) (*models.RunReport, error)
}
