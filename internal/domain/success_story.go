package domain

import "time"

// SuccessStory marks a case as resolved. Creating one flips the linked
// case's status to found in the same transaction.
type SuccessStory struct {
	ID              int
	Title           string
	Description     string
	MissingPersonID int
	PhotoURL        *string
	CreatedAt       time.Time
}
