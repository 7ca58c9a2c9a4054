package notes

import (
	"errors"
	"time"
)

var (
	// ErrValidation indicates bad or missing caller input.
	ErrValidation = errors.New("notes: invalid input")
	// ErrNotFound indicates an operation referenced an id that does not exist.
	ErrNotFound = errors.New("notes: not found")
	// ErrConnectivity indicates the backing store could not be reached.
	ErrConnectivity = errors.New("notes: storage unavailable")
)

// Note is a free-form text entry, independent of habits and their logs.
// Notes are appended and deleted, never edited.
type Note struct {
	ID        string    `gorm:"column:id;primaryKey;size:36;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}
