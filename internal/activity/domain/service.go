package domain

import (
	"context"
	"errors"

	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
)

// SubmitResponse reports the stored entry, the aggregates after the append,
// and the points the single entry earned.
type SubmitResponse struct {
	Entry        ActivityEntry                     `json:"entry"`
	Aggregate    aggregatedomain.AggregateResponse `json:"aggregate"`
	PointsEarned int64                             `json:"points_earned"`
}

// Service is the activity ledger: every mutation is serialized per user and
// commits atomically with the aggregate recomputation it triggers.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error)
	Edit(ctx context.Context, userID, entryID string, patch Patch) (*aggregatedomain.AggregateResponse, error)
	Delete(ctx context.Context, userID, entryID string) (*aggregatedomain.AggregateResponse, error)
	List(ctx context.Context, req ListRequest) ([]ActivityEntry, error)
}

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidCategory  = errors.New("invalid_category")
	ErrInvalidSource    = errors.New("invalid_source")
	ErrInvalidValue     = errors.New("invalid_value")
	ErrInvalidTimestamp = errors.New("invalid_timestamp")
	ErrInvalidEntry     = errors.New("invalid_entry")
	ErrEntryNotFound    = errors.New("entry_not_found")
	ErrEmptyPatch       = errors.New("empty_patch")
)
