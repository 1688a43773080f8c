package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/missing-persons-service/internal/api/dto"
	"github.com/spec-kit/missing-persons-service/internal/auth"
	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/service"
	apperrors "github.com/spec-kit/missing-persons-service/pkg/util/errorutil"
)

// StoriesHandler manages success story endpoints.
type StoriesHandler struct {
	service *service.StoryService
}

// NewStoriesHandler constructs handler.
func NewStoriesHandler(storyService *service.StoryService) *StoriesHandler {
	return &StoriesHandler{service: storyService}
}

// List GET /api/success-stories.
func (h *StoriesHandler) List(c *fiber.Ctx) error {
	stories, err := h.service.ListStories(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SuccessStoryResponse, 0, len(stories))
	for i := range stories {
		items = append(items, storyResponse(&stories[i]))
	}
	return c.JSON(items)
}

// Create POST /api/success-stories.
func (h *StoriesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SuccessStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	if strings.TrimSpace(req.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(req.Description) == "" {
		details["description"] = "required"
	}
	if req.MissingPersonID <= 0 {
		details["missingPersonId"] = "must be a positive integer"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid data", details)
	}

	story, err := h.service.CreateStory(c.Context(), principal.User.ID, service.StoryInput{
		Title:           req.Title,
		Description:     req.Description,
		MissingPersonID: req.MissingPersonID,
		PhotoURL:        req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(storyResponse(story))
}

func storyResponse(story *domain.SuccessStory) dto.SuccessStoryResponse {
	return dto.SuccessStoryResponse{
		ID:              story.ID,
		Title:           story.Title,
		Description:     story.Description,
		MissingPersonID: story.MissingPersonID,
		PhotoURL:        story.PhotoURL,
		CreatedAt:       story.CreatedAt,
	}
}
