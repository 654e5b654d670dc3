package models

import "strconv"

// Participant represents a study participant as held by the participant directory
type Participant struct {
	ID                    string            `json:"id"`
	ParticipantIdentifier string            `json:"participantIdentifier,omitempty"`
	CustomFields          map[string]string `json:"customFields"`
}

// Field returns the value of a custom field and whether the field is present on the record.
func (p Participant) Field(key string) (string, bool) {
	if p.CustomFields == nil {
		return "", false
	}
	value, ok := p.CustomFields[key]
	return value, ok
}

// ParticipantPatch is a partial participant update. Only the listed custom fields are modified.
type ParticipantPatch struct {
	ID           string            `json:"id"`
	CustomFields map[string]string `json:"customFields"`
}

// NewParticipantPatch creates an empty patch for the given participant
func NewParticipantPatch(id string) ParticipantPatch {
	return ParticipantPatch{ID: id, CustomFields: map[string]string{}}
}

// Set adds a field to the patch
func (p ParticipantPatch) Set(key, value string) {
	p.CustomFields[key] = value
}

// FieldNames holds the custom field keys read and written on every participant record
type FieldNames struct {
	Categories    string // category count
	Bound         string // maximum issuable value
	HistoryPrefix string // + category index, comma-joined issued values
	IssuedPrefix  string // + category index, most recent draw
	Status        string // validation failure message
}

// DefaultFieldNames returns the field names used by the study project
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Categories:    "ema_categories",
		Bound:         "ema_max",
		HistoryPrefix: "ema_metadata",
		IssuedPrefix:  "ema_random",
		Status:        "ema_status",
	}
}

// HistoryKey returns the history field for a category index
func (f FieldNames) HistoryKey(index int) string {
	return f.HistoryPrefix + strconv.Itoa(index)
}

// IssuedKey returns the most-recent-draw field for a category index
func (f FieldNames) IssuedKey(index int) string {
	return f.IssuedPrefix + strconv.Itoa(index)
}

// BoundKey returns the per-category bound field for a category index
func (f FieldNames) BoundKey(index int) string {
	return f.Bound + strconv.Itoa(index)
}
