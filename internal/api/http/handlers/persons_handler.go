package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/missing-persons-service/internal/api/dto"
	"github.com/spec-kit/missing-persons-service/internal/auth"
	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/repository"
	"github.com/spec-kit/missing-persons-service/internal/service"
	apperrors "github.com/spec-kit/missing-persons-service/pkg/util/errorutil"
)

// Accepted layouts for date fields arriving as strings.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// PersonsHandler manages missing-person case endpoints.
type PersonsHandler struct {
	service *service.PersonService
}

// NewPersonsHandler constructs handler.
func NewPersonsHandler(personService *service.PersonService) *PersonsHandler {
	return &PersonsHandler{service: personService}
}

// Search GET /api/missing-persons.
func (h *PersonsHandler) Search(c *fiber.Ctx) error {
	filter, err := parseSearchQuery(c)
	if err != nil {
		return err
	}
	persons, err := h.service.SearchCases(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.MissingPersonResponse, 0, len(persons))
	for i := range persons {
		items = append(items, personResponse(&persons[i]))
	}
	return c.JSON(items)
}

// Get GET /api/missing-persons/:id.
func (h *PersonsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	person, err := h.service.GetCase(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(personResponse(person))
}

// Create POST /api/missing-persons.
func (h *PersonsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.MissingPersonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := personInputFromRequest(req)
	if err != nil {
		return err
	}
	person, err := h.service.CreateCase(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(personResponse(person))
}

// Update PUT /api/missing-persons/:id.
func (h *PersonsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.MissingPersonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := personInputFromRequest(req)
	if err != nil {
		return err
	}
	person, err := h.service.UpdateCase(c.Context(), principal.User.ID, id, input)
	if err != nil {
		return err
	}
	return c.JSON(personResponse(person))
}

func parseID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": "must be a positive integer"})
	}
	return id, nil
}

// parseSearchQuery validates query parameters into a typed filter before
// anything reaches the query builder. Malformed values are client errors,
// not silent empty results.
func parseSearchQuery(c *fiber.Ctx) (repository.PersonFilter, error) {
	filter := repository.PersonFilter{}
	details := map[string]any{}

	if name := c.Query("name"); name != "" {
		filter.Name = &name
	}
	if location := c.Query("location"); location != "" {
		filter.Location = &location
	}
	if ageStr := c.Query("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			details["age"] = "must be an integer"
		} else {
			filter.Age = &age
		}
	}
	if gender := c.Query("gender"); gender != "" {
		filter.Gender = &gender
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.CaseStatus(statusStr)
		if !status.Valid() {
			details["status"] = "must be one of: missing, found"
		} else {
			filter.Status = &status
		}
	}
	if dateStr := c.Query("lastSeenDate"); dateStr != "" {
		date, err := parseDate(dateStr)
		if err != nil {
			details["lastSeenDate"] = "must be a valid date (YYYY-MM-DD or RFC3339)"
		} else {
			filter.LastSeenDate = &date
		}
	}

	if len(details) > 0 {
		return repository.PersonFilter{}, apperrors.NewValidationError("invalid search parameters", details)
	}
	return filter, nil
}

func personInputFromRequest(req dto.MissingPersonRequest) (service.PersonInput, error) {
	details := map[string]any{}

	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "required"
	}
	if req.Age <= 0 {
		details["age"] = "must be a positive integer"
	}
	if strings.TrimSpace(req.Gender) == "" {
		details["gender"] = "required"
	}
	if strings.TrimSpace(req.LastLocation) == "" {
		details["lastLocation"] = "required"
	}
	if strings.TrimSpace(req.ContactName) == "" {
		details["contactName"] = "required"
	}
	if strings.TrimSpace(req.ContactPhone) == "" {
		details["contactPhone"] = "required"
	}

	var lastSeen time.Time
	if strings.TrimSpace(req.LastSeenDate) == "" {
		details["lastSeenDate"] = "required"
	} else {
		parsed, err := parseDate(req.LastSeenDate)
		if err != nil {
			details["lastSeenDate"] = "must be a valid date (YYYY-MM-DD or RFC3339)"
		} else {
			lastSeen = parsed
		}
	}

	status := domain.CaseStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		details["status"] = "must be one of: missing, found"
	}
	if req.BloodType != nil && !domain.ValidBloodType(*req.BloodType) {
		details["bloodType"] = "must be one of: " + strings.Join(domain.BloodTypes, ", ")
	}

	if len(details) > 0 {
		return service.PersonInput{}, apperrors.NewValidationError("invalid data", details)
	}

	return service.PersonInput{
		Name:                       req.Name,
		Age:                        req.Age,
		Gender:                     req.Gender,
		Height:                     req.Height,
		BloodType:                  req.BloodType,
		Characteristics:            req.Characteristics,
		LastLocation:               req.LastLocation,
		LastSeenDate:               lastSeen,
		DisappearanceCircumstances: req.DisappearanceCircumstances,
		Status:                     status,
		ContactName:                req.ContactName,
		ContactPhone:               req.ContactPhone,
		ContactEmail:               req.ContactEmail,
		PhotoURL:                   req.PhotoURL,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func personResponse(person *domain.MissingPerson) dto.MissingPersonResponse {
	return dto.MissingPersonResponse{
		ID:                         person.ID,
		Name:                       person.Name,
		Age:                        person.Age,
		Gender:                     person.Gender,
		Height:                     person.Height,
		BloodType:                  person.BloodType,
		Characteristics:            person.Characteristics,
		LastLocation:               person.LastLocation,
		LastSeenDate:               person.LastSeenDate,
		DisappearanceCircumstances: person.DisappearanceCircumstances,
		Status:                     string(person.Status),
		ContactName:                person.ContactName,
		ContactPhone:               person.ContactPhone,
		ContactEmail:               person.ContactEmail,
		ReportedBy:                 person.ReportedBy,
		PhotoURL:                   person.PhotoURL,
		CreatedAt:                  person.CreatedAt,
		UpdatedAt:                  person.UpdatedAt,
	}
}
