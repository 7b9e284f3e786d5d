package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// PersonRepository defines data access for persons.
type PersonRepository interface {
	Create(ctx context.Context, name, role string, companyID int64) (*models.Person, error)
	GetByID(ctx context.Context, id int64) (*models.Person, error)
	// GetByNameAndCompany performs a case-insensitive lookup by the
	// (name, company_id) identity key.
	GetByNameAndCompany(ctx context.Context, name string, companyID int64) (*models.Person, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	GetRecord(ctx context.Context, id int64) (*models.PersonRecord, error)
	ListRecords(ctx context.Context) ([]*models.PersonRecord, error)
	ListRecordsByUseCase(ctx context.Context, useCaseID int64) ([]*models.PersonRecord, error)
}

type personRepository struct{}

// NewPersonRepository creates a new person repository.
func NewPersonRepository() PersonRepository {
	return &personRepository{}
}

var _ PersonRepository = (*personRepository)(nil)

func (r *personRepository) Create(ctx context.Context, name, role string, companyID int64) (*models.Person, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	person := &models.Person{Name: name, Role: role, CompanyID: companyID}
	err := scope.Conn.QueryRow(ctx,
		`INSERT INTO persons (name, role, company_id) VALUES ($1, $2, $3) RETURNING id`,
		name, role, companyID,
	).Scan(&person.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

func (r *personRepository) GetByID(ctx context.Context, id int64) (*models.Person, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var person models.Person
	err := scope.Conn.QueryRow(ctx,
		`SELECT id, name, role, company_id FROM persons WHERE id = $1`,
		id,
	).Scan(&person.ID, &person.Name, &person.Role, &person.CompanyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	return &person, nil
}

func (r *personRepository) GetByNameAndCompany(ctx context.Context, name string, companyID int64) (*models.Person, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var person models.Person
	err := scope.Conn.QueryRow(ctx,
		`SELECT id, name, role, company_id FROM persons
		 WHERE lower(name) = lower($1) AND company_id = $2
		 ORDER BY id LIMIT 1`,
		name, companyID,
	).Scan(&person.ID, &person.Name, &person.Role, &person.CompanyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person by name: %w", err)
	}

	return &person, nil
}

func (r *personRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`UPDATE persons SET role = $1 WHERE id = $2`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update person role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("person %d not found", id)
	}

	return nil
}

func (r *personRepository) GetRecord(ctx context.Context, id int64) (*models.PersonRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var record models.PersonRecord
	err := scope.Conn.QueryRow(ctx, `
		SELECT p.id, p.name, p.role, p.company_id, c.name
		FROM persons p
		JOIN companies c ON c.id = p.company_id
		WHERE p.id = $1`,
		id,
	).Scan(&record.ID, &record.Name, &record.Role, &record.CompanyID, &record.CompanyName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person record: %w", err)
	}

	return &record, nil
}

func (r *personRepository) ListRecords(ctx context.Context) ([]*models.PersonRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT p.id, p.name, p.role, p.company_id, c.name
		FROM persons p
		JOIN companies c ON c.id = p.company_id
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	return scanPersonRecords(rows)
}

func (r *personRepository) ListRecordsByUseCase(ctx context.Context, useCaseID int64) ([]*models.PersonRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT p.id, p.name, p.role, p.company_id, c.name
		FROM persons p
		JOIN companies c ON c.id = p.company_id
		JOIN use_case_persons ucp ON ucp.person_id = p.id
		WHERE ucp.use_case_id = $1
		ORDER BY p.id`,
		useCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons for use case: %w", err)
	}
	defer rows.Close()

	return scanPersonRecords(rows)
}

func scanPersonRecords(rows pgx.Rows) ([]*models.PersonRecord, error) {
	var records []*models.PersonRecord
	for rows.Next() {
		var record models.PersonRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.Role, &record.CompanyID, &record.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return records, nil
}
