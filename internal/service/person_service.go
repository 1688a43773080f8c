package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/events"
	"github.com/spec-kit/missing-persons-service/internal/repository"
	apperrors "github.com/spec-kit/missing-persons-service/pkg/util/errorutil"
)

// PersonService coordinates missing-person case workflows and the
// statistics aggregation.
type PersonService struct {
	persons    repository.PersonRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PersonInput describes a fully-specified case payload. Status is optional
// on create (defaults to missing) and, when empty on update, preserves the
// stored status.
type PersonInput struct {
	Name                       string
	Age                        int
	Gender                     string
	Height                     *string
	BloodType                  *string
	Characteristics            *string
	LastLocation               string
	LastSeenDate               time.Time
	DisappearanceCircumstances *string
	Status                     domain.CaseStatus
	ContactName                string
	ContactPhone               string
	ContactEmail               *string
	PhotoURL                   *string
}

// NewPersonService constructs the service.
func NewPersonService(persons repository.PersonRepository, dispatcher events.Dispatcher, logger *zap.Logger) *PersonService {
	return &PersonService{persons: persons, dispatcher: dispatcher, logger: logger}
}

// CreateCase registers a new case for the authenticated reporter.
func (s *PersonService) CreateCase(ctx context.Context, reporterID int, input PersonInput) (*domain.MissingPerson, error) {
	person := personFromInput(input)
	person.ReportedBy = reporterID
	if person.Status == "" {
		person.Status = domain.CaseStatusMissing
	}

	if err := s.persons.Create(ctx, person); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseReported,
		CaseID:  person.ID,
		ActorID: reporterID,
		Payload: events.CaseReportedPayload{
			Name:         person.Name,
			LastLocation: person.LastLocation,
			ReportedBy:   reporterID,
		},
	})
	return person, nil
}

// UpdateCase replaces the mutable fields of a case. Only the original
// reporter may update; the ownership check runs before any mutation.
func (s *PersonService) UpdateCase(ctx context.Context, userID, caseID int, input PersonInput) (*domain.MissingPerson, error) {
	existing, err := s.persons.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("missing person", map[string]any{"id": caseID})
		}
		return nil, err
	}
	if existing.ReportedBy != userID {
		return nil, apperrors.NewForbidden("not authorized to update this record")
	}

	person := personFromInput(input)
	person.ID = existing.ID
	person.ReportedBy = existing.ReportedBy
	person.CreatedAt = existing.CreatedAt
	if person.Status == "" {
		person.Status = existing.Status
	}

	if err := s.persons.Update(ctx, person); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseUpdated,
		CaseID:  person.ID,
		ActorID: userID,
		Payload: events.CaseUpdatedPayload{
			UpdatedBy: userID,
			Status:    person.Status,
		},
	})
	return person, nil
}

// GetCase fetches one case by id.
func (s *PersonService) GetCase(ctx context.Context, caseID int) (*domain.MissingPerson, error) {
	person, err := s.persons.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("missing person", map[string]any{"id": caseID})
		}
		return nil, err
	}
	return person, nil
}

// SearchCases returns all cases matching the filter; an empty filter
// returns every record, found and missing alike.
func (s *PersonService) SearchCases(ctx context.Context, filter repository.PersonFilter) ([]domain.MissingPerson, error) {
	persons, err := s.persons.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if persons == nil {
		persons = []domain.MissingPerson{}
	}
	return persons, nil
}

// Statistics computes the request-time counters. A data-access failure is
// logged and reported as a zero-valued record instead of failing the
// request; availability is traded for accuracy under store outage.
func (s *PersonService) Statistics(ctx context.Context) domain.Statistics {
	stats, err := s.persons.Statistics(ctx, time.Now())
	if err != nil {
		s.logger.Error("statistics aggregation failed", zap.Error(err))
		return domain.Statistics{}
	}
	return stats
}

func personFromInput(input PersonInput) *domain.MissingPerson {
	return &domain.MissingPerson{
		Name:                       strings.TrimSpace(input.Name),
		Age:                        input.Age,
		Gender:                     strings.TrimSpace(input.Gender),
		Height:                     input.Height,
		BloodType:                  input.BloodType,
		Characteristics:            input.Characteristics,
		LastLocation:               strings.TrimSpace(input.LastLocation),
		LastSeenDate:               input.LastSeenDate,
		DisappearanceCircumstances: input.DisappearanceCircumstances,
		Status:                     input.Status,
		ContactName:                strings.TrimSpace(input.ContactName),
		ContactPhone:               strings.TrimSpace(input.ContactPhone),
		ContactEmail:               input.ContactEmail,
		PhotoURL:                   input.PhotoURL,
	}
}

func (s *PersonService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
