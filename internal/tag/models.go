package tag

import "time"

// Tag is a named text snippet maintained by helpers and surfaced to users
// through chat commands. Names are unique; exact lookups are case-sensitive
// while autocomplete matches case-insensitive substrings.
type Tag struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	Name         string     `json:"name" bson:"name"`
	Description  string     `json:"description" bson:"description"`
	AuthorID     string     `json:"authorId" bson:"authorId"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	LastEditedAt *time.Time `json:"lastEditedAt,omitempty" bson:"lastEditedAt,omitempty"`
}

// Choice is one autocomplete suggestion.
type Choice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
