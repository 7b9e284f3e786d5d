// Package repositories provides pgx-backed data access for the engine's
// entities. Repositories are stateless; they execute against the query
// scope the TxManager places in the context, so calls made inside one
// service unit of work share a single transaction.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// IndustryRepository defines data access for industries.
type IndustryRepository interface {
	Create(ctx context.Context, name string) (*models.Industry, error)
	GetByID(ctx context.Context, id int64) (*models.Industry, error)
	// GetByNameFold performs a case-insensitive lookup by name.
	GetByNameFold(ctx context.Context, name string) (*models.Industry, error)
	List(ctx context.Context) ([]*models.Industry, error)
}

type industryRepository struct{}

// NewIndustryRepository creates a new industry repository.
func NewIndustryRepository() IndustryRepository {
	return &industryRepository{}
}

var _ IndustryRepository = (*industryRepository)(nil)

func (r *industryRepository) Create(ctx context.Context, name string) (*models.Industry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	industry := &models.Industry{Name: name}
	err := scope.Conn.QueryRow(ctx,
		`INSERT INTO industries (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&industry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create industry: %w", err)
	}

	return industry, nil
}

func (r *industryRepository) GetByID(ctx context.Context, id int64) (*models.Industry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var industry models.Industry
	err := scope.Conn.QueryRow(ctx,
		`SELECT id, name FROM industries WHERE id = $1`,
		id,
	).Scan(&industry.ID, &industry.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get industry: %w", err)
	}

	return &industry, nil
}

func (r *industryRepository) GetByNameFold(ctx context.Context, name string) (*models.Industry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var industry models.Industry
	err := scope.Conn.QueryRow(ctx,
		`SELECT id, name FROM industries WHERE lower(name) = lower($1)`,
		name,
	).Scan(&industry.ID, &industry.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get industry by name: %w", err)
	}

	return &industry, nil
}

func (r *industryRepository) List(ctx context.Context) ([]*models.Industry, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `SELECT id, name FROM industries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}
	defer rows.Close()

	var industries []*models.Industry
	for rows.Next() {
		var industry models.Industry
		if err := rows.Scan(&industry.ID, &industry.Name); err != nil {
			return nil, fmt.Errorf("failed to scan industry: %w", err)
		}
		industries = append(industries, &industry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate industries: %w", err)
	}

	return industries, nil
}
