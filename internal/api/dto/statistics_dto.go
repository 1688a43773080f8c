package dto

// StatisticsResponse carries the four aggregate counters.
// totalMissingPersons counts every case regardless of status; the
// historical field name is kept for client compatibility.
type StatisticsResponse struct {
	TotalMissingPersons int `json:"totalMissingPersons"`
	FoundPersons        int `json:"foundPersons"`
	MonthlyCount        int `json:"monthlyCount"`
	YearlyCount         int `json:"yearlyCount"`
}
