package entity

import "time"

// DiaryEntry is a single journal record. OwnerID is fixed at creation.
type DiaryEntry struct {
	ID        string
	OwnerID   string
	Text      string
	Image     string
	Feeling   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether userID owns the entry.
func (e *DiaryEntry) OwnedBy(userID string) bool {
	return e != nil && e.OwnerID == userID
}
