package models

// Industry groups companies and use cases by sector.
// Industries are created explicitly or implicitly via find-or-create and are
// never updated or deleted (companies reference them).
type Industry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
