package dto

import "time"

// MissingPersonRequest is the payload for creating or updating a case.
// lastSeenDate accepts RFC3339 or a plain YYYY-MM-DD calendar date. The
// reporter is always taken from the authenticated principal, never from
// the payload.
type MissingPersonRequest struct {
	Name                       string  `json:"name"`
	Age                        int     `json:"age"`
	Gender                     string  `json:"gender"`
	Height                     *string `json:"height,omitempty"`
	BloodType                  *string `json:"bloodType,omitempty"`
	Characteristics            *string `json:"characteristics,omitempty"`
	LastLocation               string  `json:"lastLocation"`
	LastSeenDate               string  `json:"lastSeenDate"`
	DisappearanceCircumstances *string `json:"disappearanceCircumstances,omitempty"`
	Status                     string  `json:"status,omitempty"`
	ContactName                string  `json:"contactName"`
	ContactPhone               string  `json:"contactPhone"`
	ContactEmail               *string `json:"contactEmail,omitempty"`
	PhotoURL                   *string `json:"photoUrl,omitempty"`
}

// MissingPersonResponse mirrors the stored case record on the wire.
type MissingPersonResponse struct {
	ID                         int       `json:"id"`
	Name                       string    `json:"name"`
	Age                        int       `json:"age"`
	Gender                     string    `json:"gender"`
	Height                     *string   `json:"height"`
	BloodType                  *string   `json:"bloodType"`
	Characteristics            *string   `json:"characteristics"`
	LastLocation               string    `json:"lastLocation"`
	LastSeenDate               time.Time `json:"lastSeenDate"`
	DisappearanceCircumstances *string   `json:"disappearanceCircumstances"`
	Status                     string    `json:"status"`
	ContactName                string    `json:"contactName"`
	ContactPhone               string    `json:"contactPhone"`
	ContactEmail               *string   `json:"contactEmail"`
	ReportedBy                 int       `json:"reportedBy"`
	PhotoURL                   *string   `json:"photoUrl"`
	CreatedAt                  time.Time `json:"createdAt"`
	UpdatedAt                  time.Time `json:"updatedAt"`
}
