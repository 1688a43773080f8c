package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/missing-persons-service/internal/domain"
)

// PersonFilter captures search parameters for case records. Nil fields
// impose no constraint; set fields combine with logical AND.
type PersonFilter struct {
	Name         *string
	Location     *string
	Age          *int
	Gender       *string
	Status       *domain.CaseStatus
	LastSeenDate *time.Time
}

// PersonRepository encapsulates missing-person case persistence.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.MissingPerson) error
	Update(ctx context.Context, person *domain.MissingPerson) error
	GetByID(ctx context.Context, id int) (*domain.MissingPerson, error)
	Search(ctx context.Context, filter PersonFilter) ([]domain.MissingPerson, error)
	Statistics(ctx context.Context, now time.Time) (domain.Statistics, error)
}

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository instantiates repository.
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool}
}

const personColumns = `id, name, age, gender, height, blood_type, characteristics,
               last_location, last_seen_date, disappearance_circumstances, status,
               contact_name, contact_phone, contact_email, reported_by, photo_url,
               created_at, updated_at`

func (r *personRepository) Create(ctx context.Context, person *domain.MissingPerson) error {
	const query = `
        INSERT INTO missing_persons (name, age, gender, height, blood_type, characteristics,
            last_location, last_seen_date, disappearance_circumstances, status,
            contact_name, contact_phone, contact_email, reported_by, photo_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		person.Name,
		person.Age,
		person.Gender,
		person.Height,
		person.BloodType,
		person.Characteristics,
		person.LastLocation,
		person.LastSeenDate,
		person.DisappearanceCircumstances,
		person.Status,
		person.ContactName,
		person.ContactPhone,
		person.ContactEmail,
		person.ReportedBy,
		person.PhotoURL,
	).Scan(&person.ID, &person.CreatedAt, &person.UpdatedAt)
}

func (r *personRepository) Update(ctx context.Context, person *domain.MissingPerson) error {
	const query = `
        UPDATE missing_persons SET name=$1, age=$2, gender=$3, height=$4, blood_type=$5,
            characteristics=$6, last_location=$7, last_seen_date=$8,
            disappearance_circumstances=$9, status=$10, contact_name=$11, contact_phone=$12,
            contact_email=$13, photo_url=$14, updated_at=NOW()
        WHERE id=$15
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		person.Name,
		person.Age,
		person.Gender,
		person.Height,
		person.BloodType,
		person.Characteristics,
		person.LastLocation,
		person.LastSeenDate,
		person.DisappearanceCircumstances,
		person.Status,
		person.ContactName,
		person.ContactPhone,
		person.ContactEmail,
		person.PhotoURL,
		person.ID,
	).Scan(&person.UpdatedAt)
}

func (r *personRepository) GetByID(ctx context.Context, id int) (*domain.MissingPerson, error) {
	query := `SELECT ` + personColumns + ` FROM missing_persons WHERE id=$1`
	var person domain.MissingPerson
	if err := scanPerson(r.pool.QueryRow(ctx, query, id), &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) Search(ctx context.Context, filter PersonFilter) ([]domain.MissingPerson, error) {
	query, args := buildSearchQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPersons(rows)
}

// buildSearchQuery translates a filter into a conjunctive WHERE clause with
// numbered placeholders. Kept free of pool access so the construction can be
// unit tested directly.
func buildSearchQuery(filter PersonFilter) (string, []any) {
	base := `SELECT ` + personColumns + ` FROM missing_persons`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Name != nil && strings.TrimSpace(*filter.Name) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Name))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Location))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(last_location) LIKE $%d", len(args)))
	}
	if filter.Age != nil {
		args = append(args, *filter.Age)
		clauses = append(clauses, fmt.Sprintf("age=$%d", len(args)))
	}
	if filter.Gender != nil {
		args = append(args, *filter.Gender)
		clauses = append(clauses, fmt.Sprintf("gender=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.LastSeenDate != nil {
		dayStart, dayEnd := DayWindow(*filter.LastSeenDate)
		args = append(args, dayStart)
		clauses = append(clauses, fmt.Sprintf("last_seen_date >= $%d", len(args)))
		args = append(args, dayEnd)
		clauses = append(clauses, fmt.Sprintf("last_seen_date < $%d", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY id", base, strings.Join(clauses, " AND "))
	return query, args
}

// DayWindow returns the half-open interval [00:00, next day 00:00) covering
// the calendar day of t in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *personRepository) Statistics(ctx context.Context, now time.Time) (domain.Statistics, error) {
	// Rolling windows use calendar arithmetic, not fixed-length durations.
	monthAgo := now.AddDate(0, -1, 0)
	yearAgo := now.AddDate(-1, 0, 0)

	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status=$1),
               COUNT(*) FILTER (WHERE created_at >= $2),
               COUNT(*) FILTER (WHERE created_at >= $3)
        FROM missing_persons`

	var stats domain.Statistics
	err := r.pool.QueryRow(ctx, query, domain.CaseStatusFound, monthAgo, yearAgo).Scan(
		&stats.TotalMissingPersons,
		&stats.FoundPersons,
		&stats.MonthlyCount,
		&stats.YearlyCount,
	)
	if err != nil {
		return domain.Statistics{}, err
	}
	return stats, nil
}

func scanPerson(row pgx.Row, person *domain.MissingPerson) error {
	return row.Scan(
		&person.ID,
		&person.Name,
		&person.Age,
		&person.Gender,
		&person.Height,
		&person.BloodType,
		&person.Characteristics,
		&person.LastLocation,
		&person.LastSeenDate,
		&person.DisappearanceCircumstances,
		&person.Status,
		&person.ContactName,
		&person.ContactPhone,
		&person.ContactEmail,
		&person.ReportedBy,
		&person.PhotoURL,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
}

func scanPersons(rows pgx.Rows) ([]domain.MissingPerson, error) {
	var result []domain.MissingPerson
	for rows.Next() {
		var person domain.MissingPerson
		if err := scanPerson(rows, &person); err != nil {
			return nil, err
		}
		result = append(result, person)
	}
	return result, rows.Err()
}
