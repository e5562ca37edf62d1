// Package domain holds search row types and ports
package domain

import (
	"context"
	"time"

	"jobacq/internal/core/combo"
)

// SearchRow is one live or superseded (user, combination) row
type SearchRow struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	Combination  combo.Combination `json:"combination"`
	CreatedAt    time.Time         `json:"created_at"`
	SupersededAt *time.Time        `json:"superseded_at,omitempty"`
}

// SetResult reports how a preferences update changed the user's live rows
type SetResult struct {
	Combinations []combo.Combination `json:"combinations"`
	Added        int                 `json:"added"`
	Kept         int                 `json:"kept"`
	Superseded   int                 `json:"superseded"`
}

// ServicePort manages a user's search rows
type ServicePort interface {
	Set(ctx context.Context, userID string, p combo.Preferences) (SetResult, error)
	ForUser(ctx context.Context, userID string) ([]SearchRow, error)
}

// CandidatesPort supplies the combinations a backfill run considers
type CandidatesPort interface {
	// UserCombinations returns the user's live combinations
	UserCombinations(ctx context.Context, userID string) ([]combo.Combination, error)

	// DistinctCombinations returns every live combination across all users, once each
	DistinctCombinations(ctx context.Context) ([]combo.Combination, error)
}
