package events

import (
	"time"

	"github.com/spec-kit/missing-persons-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseReported   EventType = "case_reported"
	EventCaseUpdated    EventType = "case_updated"
	EventPersonFound    EventType = "person_found"
	EventStoryPublished EventType = "story_published"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    int         `json:"case_id"`
	ActorID   int         `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseReportedPayload payload.
type CaseReportedPayload struct {
	Name         string `json:"name"`
	LastLocation string `json:"last_location"`
	ReportedBy   int    `json:"reported_by"`
}

// CaseUpdatedPayload payload.
type CaseUpdatedPayload struct {
	UpdatedBy int               `json:"updated_by"`
	Status    domain.CaseStatus `json:"status"`
}

// PersonFoundPayload payload.
type PersonFoundPayload struct {
	StoryID int `json:"story_id"`
}

// StoryPublishedPayload payload.
type StoryPublishedPayload struct {
	Title string `json:"title"`
}
