package domain

import "time"

// CaseStatus enumerates lifecycle states for a missing-person case.
type CaseStatus string

const (
	CaseStatusMissing CaseStatus = "missing"
	CaseStatusFound   CaseStatus = "found"
)

// Valid reports whether the status is one of the known states.
func (s CaseStatus) Valid() bool {
	return s == CaseStatusMissing || s == CaseStatusFound
}

// BloodTypes lists the accepted blood type values for case records.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ValidBloodType reports whether the given value is an accepted blood type.
func ValidBloodType(value string) bool {
	for _, bt := range BloodTypes {
		if bt == value {
			return true
		}
	}
	return false
}

// MissingPerson is the central aggregate: one person's disappearance record.
// Optional descriptive attributes are pointers; required attributes are plain
// values enforced at the API boundary.
type MissingPerson struct {
	ID                         int
	Name                       string
	Age                        int
	Gender                     string
	Height                     *string
	BloodType                  *string
	Characteristics            *string
	LastLocation               string
	LastSeenDate               time.Time
	DisappearanceCircumstances *string
	Status                     CaseStatus
	ContactName                string
	ContactPhone               string
	ContactEmail               *string
	ReportedBy                 int
	PhotoURL                   *string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Statistics aggregates request-time counters over the case table.
// TotalMissingPersons counts every case regardless of status; the name is
// kept for wire compatibility with existing clients.
type Statistics struct {
	TotalMissingPersons int
	FoundPersons        int
	MonthlyCount        int
	YearlyCount         int
}
