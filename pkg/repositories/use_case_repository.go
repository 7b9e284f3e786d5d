package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// UseCaseRepository defines data access for use cases and their
// contributor relation.
type UseCaseRepository interface {
	Create(ctx context.Context, uc *models.UseCase) error
	Get(ctx context.Context, id int64) (*models.UseCase, error)
	GetRecord(ctx context.Context, id int64) (*models.UseCaseRecord, error)
	Update(ctx context.Context, uc *models.UseCase) error
	Delete(ctx context.Context, id int64) error
	ListRecords(ctx context.Context) ([]*models.UseCaseRecord, error)
	FilterRecords(ctx context.Context, filter models.UseCaseFilter) ([]*models.UseCaseRecord, error)
	// Contributors returns the person ids currently linked to the use case.
	Contributors(ctx context.Context, useCaseID int64) ([]int64, error)
	AddContributors(ctx context.Context, useCaseID int64, personIDs []int64) error
}

type useCaseRepository struct{}

// NewUseCaseRepository creates a new use case repository.
func NewUseCaseRepository() UseCaseRepository {
	return &useCaseRepository{}
}

var _ UseCaseRepository = (*useCaseRepository)(nil)

const useCaseRecordSelect = `
	SELECT uc.id, uc.title, COALESCE(uc.description, ''), COALESCE(uc.expected_benefit, ''),
	       uc.status, uc.company_id, c.name, uc.industry_id, i.name
	FROM use_cases uc
	JOIN companies c ON c.id = uc.company_id
	JOIN industries i ON i.id = uc.industry_id`

func (r *useCaseRepository) Create(ctx context.Context, uc *models.UseCase) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	err := scope.Conn.QueryRow(ctx, `
		INSERT INTO use_cases (title, description, expected_benefit, status, company_id, industry_id)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
		RETURNING id`,
		uc.Title, uc.Description, uc.ExpectedBenefit, uc.Status, uc.CompanyID, uc.IndustryID,
	).Scan(&uc.ID)
	if err != nil {
		return fmt.Errorf("failed to create use case: %w", err)
	}

	return nil
}

func (r *useCaseRepository) Get(ctx context.Context, id int64) (*models.UseCase, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var uc models.UseCase
	err := scope.Conn.QueryRow(ctx, `
		SELECT id, title, COALESCE(description, ''), COALESCE(expected_benefit, ''),
		       status, company_id, industry_id
		FROM use_cases WHERE id = $1`,
		id,
	).Scan(&uc.ID, &uc.Title, &uc.Description, &uc.ExpectedBenefit, &uc.Status, &uc.CompanyID, &uc.IndustryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get use case: %w", err)
	}

	return &uc, nil
}

func (r *useCaseRepository) GetRecord(ctx context.Context, id int64) (*models.UseCaseRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var record models.UseCaseRecord
	err := scope.Conn.QueryRow(ctx, useCaseRecordSelect+` WHERE uc.id = $1`, id).Scan(
		&record.ID, &record.Title, &record.Description, &record.ExpectedBenefit,
		&record.Status, &record.CompanyID, &record.CompanyName, &record.IndustryID, &record.IndustryName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get use case record: %w", err)
	}

	return &record, nil
}

func (r *useCaseRepository) Update(ctx context.Context, uc *models.UseCase) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `
		UPDATE use_cases
		SET title = $1, description = NULLIF($2, ''), expected_benefit = NULLIF($3, ''),
		    status = $4, company_id = $5, industry_id = $6
		WHERE id = $7`,
		uc.Title, uc.Description, uc.ExpectedBenefit, uc.Status, uc.CompanyID, uc.IndustryID, uc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update use case: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("use case %d not found", uc.ID)
	}

	return nil
}

func (r *useCaseRepository) Delete(ctx context.Context, id int64) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM use_cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete use case: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("use case %d not found", id)
	}

	return nil
}

func (r *useCaseRepository) ListRecords(ctx context.Context) ([]*models.UseCaseRecord, error) {
	return r.FilterRecords(ctx, models.UseCaseFilter{})
}

func (r *useCaseRepository) FilterRecords(ctx context.Context, filter models.UseCaseFilter) ([]*models.UseCaseRecord, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CompanyID != nil {
		conditions = append(conditions, "uc.company_id = "+arg(*filter.CompanyID))
	}
	if filter.IndustryID != nil {
		conditions = append(conditions, "uc.industry_id = "+arg(*filter.IndustryID))
	}
	if filter.Status != nil {
		conditions = append(conditions, "uc.status = "+arg(*filter.Status))
	}
	if filter.PersonID != nil {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM use_case_persons ucp WHERE ucp.use_case_id = uc.id AND ucp.person_id = "+arg(*filter.PersonID)+")")
	}

	query := useCaseRecordSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY uc.id"

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter use cases: %w", err)
	}
	defer rows.Close()

	var records []*models.UseCaseRecord
	for rows.Next() {
		var record models.UseCaseRecord
		err := rows.Scan(
			&record.ID, &record.Title, &record.Description, &record.ExpectedBenefit,
			&record.Status, &record.CompanyID, &record.CompanyName, &record.IndustryID, &record.IndustryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan use case: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate use cases: %w", err)
	}

	return records, nil
}

func (r *useCaseRepository) Contributors(ctx context.Context, useCaseID int64) ([]int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	rows, err := scope.Conn.Query(ctx,
		`SELECT person_id FROM use_case_persons WHERE use_case_id = $1`,
		useCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributors: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributors: %w", err)
	}

	return ids, nil
}

func (r *useCaseRepository) AddContributors(ctx context.Context, useCaseID int64, personIDs []int64) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	for _, personID := range personIDs {
		_, err := scope.Conn.Exec(ctx, `
			INSERT INTO use_case_persons (use_case_id, person_id) VALUES ($1, $2)
			ON CONFLICT (use_case_id, person_id) DO NOTHING`,
			useCaseID, personID)
		if err != nil {
			return fmt.Errorf("failed to add contributor %d: %w", personID, err)
		}
	}

	return nil
}
