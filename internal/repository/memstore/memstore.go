package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/missing-persons-service/internal/domain"
	"github.com/spec-kit/missing-persons-service/internal/repository"
)

// Store is an in-memory implementation of every repository interface. It
// backs the memory storage driver and the test suite; a single mutex gives
// the story-creation path the same all-or-nothing behavior the Postgres
// implementation gets from a transaction.
//
// Absent rows are reported as pgx.ErrNoRows so callers see one error shape
// regardless of driver.
type Store struct {
	mu       sync.RWMutex
	users    map[int]*domain.User
	persons  map[int]*domain.MissingPerson
	stories  map[int]*domain.SuccessStory
	sessions map[string]*domain.Session

	nextUserID   int
	nextPersonID int
	nextStoryID  int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[int]*domain.User),
		persons:      make(map[int]*domain.MissingPerson),
		stories:      make(map[int]*domain.SuccessStory),
		sessions:     make(map[string]*domain.Session),
		nextUserID:   1,
		nextPersonID: 1,
		nextStoryID:  1,
	}
}

// Users returns the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return (*userStore)(s) }

// Persons returns the store as a PersonRepository.
func (s *Store) Persons() repository.PersonRepository { return (*personStore)(s) }

// Stories returns the store as a StoryRepository.
func (s *Store) Stories() repository.StoryRepository { return (*storyStore)(s) }

// Sessions returns the store as a SessionRepository.
func (s *Store) Sessions() repository.SessionRepository { return (*sessionStore)(s) }

type userStore Store

func (s *userStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextUserID
	s.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *userStore) GetByID(_ context.Context, id int) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (s *userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type personStore Store

func (s *personStore) Create(_ context.Context, person *domain.MissingPerson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	person.ID = s.nextPersonID
	s.nextPersonID++
	now := time.Now()
	person.CreatedAt = now
	person.UpdatedAt = now
	clone := *person
	s.persons[person.ID] = &clone
	return nil
}

func (s *personStore) Update(_ context.Context, person *domain.MissingPerson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.persons[person.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	person.CreatedAt = existing.CreatedAt
	person.ReportedBy = existing.ReportedBy
	person.UpdatedAt = time.Now()
	clone := *person
	s.persons[person.ID] = &clone
	return nil
}

func (s *personStore) GetByID(_ context.Context, id int) (*domain.MissingPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	person, ok := s.persons[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *person
	return &clone, nil
}

func (s *personStore) Search(_ context.Context, filter repository.PersonFilter) ([]domain.MissingPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.MissingPerson, 0, len(s.persons))
	for _, person := range s.persons {
		if matches(person, filter) {
			result = append(result, *person)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func matches(person *domain.MissingPerson, filter repository.PersonFilter) bool {
	if filter.Name != nil && !containsFold(person.Name, *filter.Name) {
		return false
	}
	if filter.Location != nil && !containsFold(person.LastLocation, *filter.Location) {
		return false
	}
	if filter.Age != nil && person.Age != *filter.Age {
		return false
	}
	if filter.Gender != nil && person.Gender != *filter.Gender {
		return false
	}
	if filter.Status != nil && person.Status != *filter.Status {
		return false
	}
	if filter.LastSeenDate != nil {
		dayStart, dayEnd := repository.DayWindow(*filter.LastSeenDate)
		seen := person.LastSeenDate
		if seen.Before(dayStart) || !seen.Before(dayEnd) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func (s *personStore) Statistics(_ context.Context, now time.Time) (domain.Statistics, error) {
	monthAgo := now.AddDate(0, -1, 0)
	yearAgo := now.AddDate(-1, 0, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats domain.Statistics
	for _, person := range s.persons {
		stats.TotalMissingPersons++
		if person.Status == domain.CaseStatusFound {
			stats.FoundPersons++
		}
		if !person.CreatedAt.Before(monthAgo) {
			stats.MonthlyCount++
		}
		if !person.CreatedAt.Before(yearAgo) {
			stats.YearlyCount++
		}
	}
	return stats, nil
}

type storyStore Store

func (s *storyStore) Create(_ context.Context, story *domain.SuccessStory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	person, ok := s.persons[story.MissingPersonID]
	if !ok {
		return pgx.ErrNoRows
	}
	person.Status = domain.CaseStatusFound
	person.UpdatedAt = time.Now()

	story.ID = s.nextStoryID
	s.nextStoryID++
	story.CreatedAt = time.Now()
	clone := *story
	s.stories[story.ID] = &clone
	return nil
}

func (s *storyStore) List(_ context.Context) ([]domain.SuccessStory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SuccessStory, 0, len(s.stories))
	for _, story := range s.stories {
		result = append(result, *story)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type sessionStore Store

func (s *sessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	clone := *session
	s.sessions[session.Token] = &clone
	return nil
}

func (s *sessionStore) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *session
	return &clone, nil
}

func (s *sessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *sessionStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var removed int64
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}
