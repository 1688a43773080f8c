package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/missing-persons-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	query, args := buildSearchQuery(PersonFilter{})

	assert.Empty(t, args)
	assert.Contains(t, query, "WHERE 1=1")
	assert.Contains(t, query, "ORDER BY id")
	assert.NotContains(t, query, "$1")
}

func TestBuildSearchQuery_SubstringFiltersAreLowercased(t *testing.T) {
	query, args := buildSearchQuery(PersonFilter{
		Name:     strPtr("  Ana "),
		Location: strPtr("São Paulo"),
	})

	require.Len(t, args, 2)
	assert.Equal(t, "%ana%", args[0])
	assert.Equal(t, "%são paulo%", args[1])
	assert.Contains(t, query, "LOWER(name) LIKE $1")
	assert.Contains(t, query, "LOWER(last_location) LIKE $2")
}

func TestBuildSearchQuery_BlankSubstringFiltersIgnored(t *testing.T) {
	query, args := buildSearchQuery(PersonFilter{
		Name:     strPtr("   "),
		Location: strPtr(""),
	})

	assert.Empty(t, args)
	assert.NotContains(t, query, "LIKE")
}

func TestBuildSearchQuery_AllFiltersConjunction(t *testing.T) {
	date := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	status := domain.CaseStatusMissing
	query, args := buildSearchQuery(PersonFilter{
		Name:         strPtr("ana"),
		Location:     strPtr("lisboa"),
		Age:          intPtr(34),
		Gender:       strPtr("female"),
		Status:       &status,
		LastSeenDate: &date,
	})

	require.Len(t, args, 7)
	assert.Equal(t, 34, args[2])
	assert.Equal(t, "female", args[3])
	assert.Equal(t, status, args[4])

	// Day window is half-open: [00:00, next day 00:00).
	dayStart, ok := args[5].(time.Time)
	require.True(t, ok)
	dayEnd, ok := args[6].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), dayStart)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), dayEnd)

	assert.Equal(t, 5, strings.Count(query, " AND "))
	assert.Contains(t, query, "last_seen_date >= $6")
	assert.Contains(t, query, "last_seen_date < $7")
}

func TestDayWindow_MonthRollover(t *testing.T) {
	start, end := DayWindow(time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestDayWindow_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	start, end := DayWindow(time.Date(2024, 6, 10, 23, 59, 59, 0, loc))

	assert.Equal(t, loc, start.Location())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
