package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// CompanyRepository defines data access for companies.
type CompanyRepository interface {
	Create(ctx context.Context, name string, industryID int64) (*models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	// GetByNameFold performs a case-insensitive lookup by name.
	GetByNameFold(ctx context.Context, name string) (*models.Company, error)
	GetRecord(ctx context.Context, id int64) (*models.CompanyRecord, error)
	ListRecords(ctx context.Context) ([]*models.CompanyRecord, error)
}

type companyRepository struct{}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository() CompanyRepository {
	return &companyRepository{}
}

var _ CompanyRepository = (*companyRepository)(nil)

func (r *companyRepository) Create(ctx context.Context, name string, industryID int64) (*models.Company, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	company := &models.Company{Name: name, IndustryID: industryID}
	err := scope.Conn.QueryRow(ctx,
		`INSERT INTO companies (name, industry_id) VALUES ($1, $2) RETURNING id`,
		name, industryID,
	).Scan(&company.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	return company, nil
}

func (r *companyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var company models.Company
	err := scope.Conn.QueryRow(ctx,
		`SELECT id, name, industry_id FROM companies WHERE id = $1`,
		id,
	).Scan(&company.ID, &company.Name, &company.IndustryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

func (r *companyRepository) GetByNameFold(ctx context.Context, name string) (*models.Company, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var company models.Company
	err := scope.Conn.QueryRow(ctx,
		`SELECT id, name, industry_id FROM companies WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`,
		name,
	).Scan(&company.ID, &company.Name, &company.IndustryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company by name: %w", err)
	}

	return &company, nil
}

func (r *companyRepository) GetRecord(ctx context.Context, id int64) (*models.CompanyRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var record models.CompanyRecord
	err := scope.Conn.QueryRow(ctx, `
		SELECT c.id, c.name, c.industry_id, i.name
		FROM companies c
		JOIN industries i ON i.id = c.industry_id
		WHERE c.id = $1`,
		id,
	).Scan(&record.ID, &record.Name, &record.IndustryID, &record.IndustryName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company record: %w", err)
	}

	return &record, nil
}

func (r *companyRepository) ListRecords(ctx context.Context) ([]*models.CompanyRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT c.id, c.name, c.industry_id, i.name
		FROM companies c
		JOIN industries i ON i.id = c.industry_id
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var records []*models.CompanyRecord
	for rows.Next() {
		var record models.CompanyRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.IndustryID, &record.IndustryName); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return records, nil
}
