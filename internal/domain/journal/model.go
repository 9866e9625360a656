package journal

import (
	"context"
	"time"
)

// EntryKind distinguishes which artifact a journal entry points at.
type EntryKind string

const (
	EntryKindWritten EntryKind = "written"
	EntryKindSpoken  EntryKind = "spoken"
)

// Entry is a denormalized index row over a written or spoken loveslice, used
// for journal listing and search. Exactly one of LoveslicePublicID and
// SpokenLoveslicePublicID is set. Entries are created as a side effect of
// loveslice creation and never independently mutated.
type Entry struct {
	ID                      uint
	PublicID                string
	Kind                    EntryKind
	User1ID                 string
	User2ID                 string
	LoveslicePublicID       *string
	SpokenLoveslicePublicID *string
	Theme                   string
	Excerpt                 string
	SearchText              string
	CreatedAt               time.Time
}

// Filter narrows journal listing.
type Filter struct {
	UserID string
	Kind   *EntryKind
	Query  string
	Limit  int
	Offset int
}

// Repository reads journal entries. Writes happen inside the pairing and
// conversation transactions, not through this interface.
type Repository interface {
	FindByFilter(ctx context.Context, filter Filter) ([]*Entry, int64, error)
}
