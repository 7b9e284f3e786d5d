package models

import "strings"

// Use case status values. The set is closed; every write path that sets
// status validates against it.
const (
	StatusNew        = "new"
	StatusInReview   = "in_review"
	StatusApproved   = "approved"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

// ValidStatuses contains all valid status values in display order.
var ValidStatuses = []string{
	StatusNew,
	StatusInReview,
	StatusApproved,
	StatusInProgress,
	StatusCompleted,
	StatusArchived,
}

// IsValidStatus checks if the given status is one of the closed enumeration.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidStatusList returns the valid set as a comma-separated string for
// error messages.
func ValidStatusList() string {
	return strings.Join(ValidStatuses, ", ")
}

// UseCase is a described AI/ML project idea tied to one company and one
// industry, with a many-to-many contributor relation to persons.
type UseCase struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	ExpectedBenefit string `json:"expected_benefit,omitempty"`
	Status          string `json:"status"`
	CompanyID       int64  `json:"company_id"`
	IndustryID      int64  `json:"industry_id"`
}

// UseCaseRecord is the denormalized transport shape returned by every read:
// joined names travel alongside the foreign-key ids.
type UseCaseRecord struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ExpectedBenefit string `json:"expected_benefit"`
	Status          string `json:"status"`
	CompanyID       int64  `json:"company_id"`
	CompanyName     string `json:"company_name"`
	IndustryID      int64  `json:"industry_id"`
	IndustryName    string `json:"industry_name"`
}

// ContributorResult reports the outcome of an add-contributors call.
type ContributorResult struct {
	UseCaseID         int64 `json:"use_case_id"`
	PersonsAdded      int   `json:"persons_added"`
	TotalContributors int   `json:"total_contributors"`
}

// UseCaseFilter combines zero or more equality predicates with AND
// semantics. Nil fields are no-ops; the zero value matches every use case.
type UseCaseFilter struct {
	CompanyID  *int64
	IndustryID *int64
	Status     *string
	PersonID   *int64
}
