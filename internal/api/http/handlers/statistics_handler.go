package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/missing-persons-service/internal/api/dto"
	"github.com/spec-kit/missing-persons-service/internal/service"
)

// StatisticsHandler exposes the aggregate counters.
type StatisticsHandler struct {
	service *service.PersonService
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(personService *service.PersonService) *StatisticsHandler {
	return &StatisticsHandler{service: personService}
}

// Get GET /api/statistics. Never fails: a store outage yields a
// zero-valued record, logged server-side.
func (h *StatisticsHandler) Get(c *fiber.Ctx) error {
	stats := h.service.Statistics(c.Context())
	return c.JSON(dto.StatisticsResponse{
		TotalMissingPersons: stats.TotalMissingPersons,
		FoundPersons:        stats.FoundPersons,
		MonthlyCount:        stats.MonthlyCount,
		YearlyCount:         stats.YearlyCount,
	})
}
