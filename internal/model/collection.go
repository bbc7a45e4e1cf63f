package model

import "time"

// Collection is a named folder of documents. Queries are scoped to one
// collection; a query against a name with no row is rejected as unknown.
type Collection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
