package models

// Person works at a company and may contribute to any number of use cases.
// Duplicate names at different companies are allowed; (name, company_id) is
// the identity key used by find-or-create.
type Person struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID int64  `json:"company_id"`
}

// PersonRecord is the denormalized transport shape returned by reads.
type PersonRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
}
