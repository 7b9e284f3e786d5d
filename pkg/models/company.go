package models

// Company belongs to exactly one industry.
type Company struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IndustryID int64  `json:"industry_id"`
}

// CompanyRecord is the denormalized transport shape returned by reads.
// The joined industry name saves the caller (including the language model)
// a second round trip purely to resolve a display name.
type CompanyRecord struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	IndustryID   int64  `json:"industry_id"`
	IndustryName string `json:"industry_name"`
}
