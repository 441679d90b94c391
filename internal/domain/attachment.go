package domain

import "time"

// Attachment records an uploaded file linked to an issue. Attachments
// are created only after their upload succeeded and are never mutated,
// only deleted.
type Attachment struct {
	ID         string
	IssueID    string
	Filename   string
	FileURL    string
	FileSize   *int64
	MimeType   *string
	UploadedBy string
	CreatedAt  time.Time
}
