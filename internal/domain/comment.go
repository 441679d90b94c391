package domain

import "time"

// Comment is an append-only note on an issue, displayed in creation order.
type Comment struct {
	ID        string
	IssueID   string
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
