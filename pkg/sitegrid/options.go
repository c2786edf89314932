// Package sitegrid imports construction schedule and budget spreadsheets
// into per-project JSON documents.
package sitegrid

import (
	"strings"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
)

// Kind identifies which normalizer and table an import uses.
type Kind string

const (
	// KindSchedule imports task rows into the schedules table.
	KindSchedule Kind = "schedule"
	// KindBudget imports trade rows into the budgets table.
	KindBudget Kind = "budget"
)

// ParseKind accepts "schedule" or "budget" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSchedule:
		return KindSchedule, nil
	case KindBudget:
		return KindBudget, nil
	}
	return "", &UnknownKindError{Kind: s}
}

// Options configures an import.
type Options struct {
	// AnchorToken is the header cell text that marks the budget header row.
	// Empty means parser.DefaultAnchorToken.
	AnchorToken string
	// ExistingID updates that stored document instead of inserting.
	ExistingID *int64
}

// DefaultOptions returns default import options.
func DefaultOptions() Options {
	return Options{
		AnchorToken: parser.DefaultAnchorToken,
	}
}

// Anchor returns the effective anchor token.
func (o Options) Anchor() string {
	if strings.TrimSpace(o.AnchorToken) == "" {
		return parser.DefaultAnchorToken
	}
	return o.AnchorToken
}
