package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"loveslices-server/internal/domain/journal"
)

// JournalEntry represents the database schema for journal entries. SearchText
// is stored as jsonb so ILIKE search and future structured search work off
// the same column.
type JournalEntry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID                string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	Kind                    string         `gorm:"type:varchar(16);index;not null"`
	User1ID                 string         `gorm:"type:varchar(64);index;not null"`
	User2ID                 string         `gorm:"type:varchar(64);index;not null"`
	LoveslicePublicID       *string        `gorm:"type:varchar(64);index"`
	SpokenLoveslicePublicID *string        `gorm:"type:varchar(64);index"`
	Theme                   string         `gorm:"type:varchar(64);index;not null"`
	Excerpt                 string         `gorm:"type:text;not null"`
	SearchText              datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for JournalEntry.
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// EtoD converts database entity to domain model.
func (j *JournalEntry) EtoD() *journal.Entry {
	return &journal.Entry{
		ID:                      j.ID,
		PublicID:                j.PublicID,
		Kind:                    journal.EntryKind(j.Kind),
		User1ID:                 j.User1ID,
		User2ID:                 j.User2ID,
		LoveslicePublicID:       j.LoveslicePublicID,
		SpokenLoveslicePublicID: j.SpokenLoveslicePublicID,
		Theme:                   j.Theme,
		Excerpt:                 j.Excerpt,
		SearchText:              searchTextFromJSON(j.SearchText),
		CreatedAt:               j.CreatedAt,
	}
}

// NewSchemaJournalEntry creates a database entity from domain model.
func NewSchemaJournalEntry(e *journal.Entry) *JournalEntry {
	return &JournalEntry{
		ID:                      e.ID,
		PublicID:                e.PublicID,
		Kind:                    string(e.Kind),
		User1ID:                 e.User1ID,
		User2ID:                 e.User2ID,
		LoveslicePublicID:       e.LoveslicePublicID,
		SpokenLoveslicePublicID: e.SpokenLoveslicePublicID,
		Theme:                   e.Theme,
		Excerpt:                 e.Excerpt,
		SearchText:              searchTextToJSON(e.SearchText),
		CreatedAt:               e.CreatedAt,
	}
}

type searchTextPayload struct {
	Text string `json:"text"`
}

func searchTextToJSON(text string) datatypes.JSON {
	raw, err := json.Marshal(searchTextPayload{Text: text})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func searchTextFromJSON(raw datatypes.JSON) string {
	var payload searchTextPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Text
}
