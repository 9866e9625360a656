package responses

import (
	"time"

	"loveslices-server/internal/domain/journal"
)

// JournalEntryPayload is one journal index row.
type JournalEntryPayload struct {
	ID                string    `json:"id"`
	Kind              string    `json:"kind"`
	LovesliceID       *string   `json:"loveslice_id,omitempty"`
	SpokenLovesliceID *string   `json:"spoken_loveslice_id,omitempty"`
	Theme             string    `json:"theme"`
	Excerpt           string    `json:"excerpt"`
	CreatedAt         time.Time `json:"created_at"`
}

// JournalListPayload wraps a journal page.
type JournalListPayload struct {
	Data  []JournalEntryPayload `json:"data"`
	Total int64                 `json:"total"`
}

// FromJournalEntries maps journal entries to a list payload.
func FromJournalEntries(entries []*journal.Entry, total int64) JournalListPayload {
	data := make([]JournalEntryPayload, len(entries))
	for i, e := range entries {
		data[i] = JournalEntryPayload{
			ID:                e.PublicID,
			Kind:              string(e.Kind),
			LovesliceID:       e.LoveslicePublicID,
			SpokenLovesliceID: e.SpokenLoveslicePublicID,
			Theme:             e.Theme,
			Excerpt:           e.Excerpt,
			CreatedAt:         e.CreatedAt,
		}
	}
	return JournalListPayload{Data: data, Total: total}
}
