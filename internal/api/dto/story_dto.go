package dto

import "time"

// SuccessStoryRequest is the payload for publishing a success story.
type SuccessStoryRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	MissingPersonID int     `json:"missingPersonId"`
	PhotoURL        *string `json:"photoUrl,omitempty"`
}

// SuccessStoryResponse mirrors the stored story record on the wire.
type SuccessStoryResponse struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	MissingPersonID int       `json:"missingPersonId"`
	PhotoURL        *string   `json:"photoUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}
