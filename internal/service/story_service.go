package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/events"
	"github.com/spec-kit/missing-persons-service/internal/repository"
	apperrors "github.com/spec-kit/missing-persons-service/pkg/util/errorutil"
)

// StoryService coordinates success story creation, which atomically marks
// the linked case as found.
type StoryService struct {
	stories    repository.StoryRepository
	dispatcher events.Dispatcher
}

// StoryInput describes the story creation payload.
type StoryInput struct {
	Title           string
	Description     string
	MissingPersonID int
	PhotoURL        *string
}

// NewStoryService constructs the service.
func NewStoryService(stories repository.StoryRepository, dispatcher events.Dispatcher) *StoryService {
	return &StoryService{stories: stories, dispatcher: dispatcher}
}

// CreateStory publishes a success story. The repository performs the status
// flip and the insert as one atomic unit; a missing target case surfaces as
// not-found without either effect applied.
func (s *StoryService) CreateStory(ctx context.Context, actorID int, input StoryInput) (*domain.SuccessStory, error) {
	story := &domain.SuccessStory{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		MissingPersonID: input.MissingPersonID,
		PhotoURL:        input.PhotoURL,
	}

	if err := s.stories.Create(ctx, story); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("missing person", map[string]any{"id": input.MissingPersonID})
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventPersonFound,
		CaseID:  story.MissingPersonID,
		ActorID: actorID,
		Payload: events.PersonFoundPayload{StoryID: story.ID},
	})
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventStoryPublished,
		CaseID:  story.MissingPersonID,
		ActorID: actorID,
		Payload: events.StoryPublishedPayload{Title: story.Title},
	})
	return story, nil
}

// ListStories returns all success stories.
func (s *StoryService) ListStories(ctx context.Context) ([]domain.SuccessStory, error) {
	stories, err := s.stories.List(ctx)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []domain.SuccessStory{}
	}
	return stories, nil
}
