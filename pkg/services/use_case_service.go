package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/apperrors"
	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
	"github.com/usecasehq/usecase-engine/pkg/repositories"
)

// CreateUseCaseInput holds the fields for creating a use case. Status is
// optional and defaults to "new".
type CreateUseCaseInput struct {
	Title           string
	Description     string
	ExpectedBenefit string
	Status          string
	CompanyID       int64
	IndustryID      int64
}

// UpdateUseCaseInput holds partial updates for a use case. Zero-valued
// fields are left unchanged, so a text field cannot be cleared to the
// empty string through this path.
type UpdateUseCaseInput struct {
	Title           string
	Description     string
	ExpectedBenefit string
	Status          string
	CompanyID       int64
	IndustryID      int64
}

// UseCaseService defines the catalog operations available to the agent
// and the HTTP surface. Every method resolves the acting user from the
// context and checks permissions before touching the database.
type UseCaseService interface {
	GetAllUseCases(ctx context.Context) ([]*models.UseCaseRecord, error)
	GetUseCaseByID(ctx context.Context, id int64) (*models.UseCaseRecord, error)
	CreateUseCase(ctx context.Context, in CreateUseCaseInput) (*models.UseCaseRecord, error)
	UpdateUseCase(ctx context.Context, id int64, in UpdateUseCaseInput) (*models.UseCaseRecord, error)
	UpdateUseCaseStatus(ctx context.Context, id int64, status string) (*models.UseCaseRecord, error)
	DeleteUseCase(ctx context.Context, id int64) (*models.UseCaseRecord, error)
	FilterUseCases(ctx context.Context, filter models.UseCaseFilter) ([]*models.UseCaseRecord, error)

	GetAllIndustries(ctx context.Context) ([]*models.Industry, error)
	GetAllCompanies(ctx context.Context) ([]*models.CompanyRecord, error)
	GetAllPersons(ctx context.Context) ([]*models.PersonRecord, error)
	GetPersonsByUseCase(ctx context.Context, useCaseID int64) ([]*models.PersonRecord, error)

	FindOrCreateIndustry(ctx context.Context, name string) (*models.Industry, error)
	FindOrCreateCompany(ctx context.Context, name string, industryID int64) (*models.CompanyRecord, error)
	FindOrCreatePerson(ctx context.Context, name, role string, companyID int64) (*models.PersonRecord, error)

	AddContributors(ctx context.Context, useCaseID int64, personIDs []int64) (*models.ContributorResult, error)
}

// useCaseService implements UseCaseService.
type useCaseService struct {
	useCases   repositories.UseCaseRepository
	industries repositories.IndustryRepository
	companies  repositories.CompanyRepository
	persons    repositories.PersonRepository
	tx         database.TxManager
	logger     *zap.Logger
}

// NewUseCaseService creates a new use case service with dependencies.
func NewUseCaseService(
	useCases repositories.UseCaseRepository,
	industries repositories.IndustryRepository,
	companies repositories.CompanyRepository,
	persons repositories.PersonRepository,
	tx database.TxManager,
	logger *zap.Logger,
) UseCaseService {
	return &useCaseService{
		useCases:   useCases,
		industries: industries,
		companies:  companies,
		persons:    persons,
		tx:         tx,
		logger:     logger,
	}
}

// GetAllUseCases returns every use case with company and industry names joined.
func (s *useCaseService) GetAllUseCases(ctx context.Context) ([]*models.UseCaseRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var records []*models.UseCaseRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.useCases.ListRecords(ctx)
		return err
	})
	return records, err
}

// GetUseCaseByID returns a single use case or a NotFoundError.
func (s *useCaseService) GetUseCaseByID(ctx context.Context, id int64) (*models.UseCaseRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var record *models.UseCaseRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.useCases.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return &apperrors.NotFoundError{Resource: "use case", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CreateUseCase creates a use case. Both foreign keys are validated
// against existing rows before the insert.
func (s *useCaseService) CreateUseCase(ctx context.Context, in CreateUseCaseInput) (*models.UseCaseRecord, error) {
	user := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(user, auth.ActionCreate); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, apperrors.Invalidf("use case title is required")
	}

	status := in.Status
	if status == "" {
		status = models.StatusNew
	}
	if !models.IsValidStatus(status) {
		return nil, apperrors.Invalidf("invalid status '%s'. Valid statuses: %s", status, models.ValidStatusList())
	}
	if status == models.StatusArchived {
		if err := auth.RequirePermission(user, auth.ActionArchive); err != nil {
			return nil, err
		}
	}

	var record *models.UseCaseRecord
	err := s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		company, err := s.companies.GetByID(ctx, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return &apperrors.NotFoundError{Resource: "company", ID: in.CompanyID}
		}
		industry, err := s.industries.GetByID(ctx, in.IndustryID)
		if err != nil {
			return err
		}
		if industry == nil {
			return &apperrors.NotFoundError{Resource: "industry", ID: in.IndustryID}
		}

		uc := &models.UseCase{
			Title:           in.Title,
			Description:     in.Description,
			ExpectedBenefit: in.ExpectedBenefit,
			Status:          status,
			CompanyID:       in.CompanyID,
			IndustryID:      in.IndustryID,
		}
		if err := s.useCases.Create(ctx, uc); err != nil {
			return err
		}

		record, err = s.useCases.GetRecord(ctx, uc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created use case",
		zap.Int64("id", record.ID),
		zap.String("title", record.Title),
		zap.Int64("company_id", record.CompanyID))

	return record, nil
}

// UpdateUseCase applies a partial update. Setting the status to archived
// requires the archive permission regardless of the caller's role for
// ordinary updates.
func (s *useCaseService) UpdateUseCase(ctx context.Context, id int64, in UpdateUseCaseInput) (*models.UseCaseRecord, error) {
	user := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(user, auth.ActionUpdate); err != nil {
		return nil, err
	}

	if in.Status != "" {
		if !models.IsValidStatus(in.Status) {
			return nil, apperrors.Invalidf("invalid status '%s'. Valid statuses: %s", in.Status, models.ValidStatusList())
		}
		if in.Status == models.StatusArchived {
			if err := auth.RequirePermission(user, auth.ActionArchive); err != nil {
				return nil, err
			}
		}
	}

	var record *models.UseCaseRecord
	err := s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		uc, err := s.useCases.Get(ctx, id)
		if err != nil {
			return err
		}
		if uc == nil {
			return &apperrors.NotFoundError{Resource: "use case", ID: id}
		}

		if in.Title != "" {
			uc.Title = in.Title
		}
		if in.Description != "" {
			uc.Description = in.Description
		}
		if in.ExpectedBenefit != "" {
			uc.ExpectedBenefit = in.ExpectedBenefit
		}
		if in.Status != "" {
			uc.Status = in.Status
		}
		if in.CompanyID != 0 && in.CompanyID != uc.CompanyID {
			company, err := s.companies.GetByID(ctx, in.CompanyID)
			if err != nil {
				return err
			}
			if company == nil {
				return &apperrors.NotFoundError{Resource: "company", ID: in.CompanyID}
			}
			uc.CompanyID = in.CompanyID
		}
		if in.IndustryID != 0 && in.IndustryID != uc.IndustryID {
			industry, err := s.industries.GetByID(ctx, in.IndustryID)
			if err != nil {
				return err
			}
			if industry == nil {
				return &apperrors.NotFoundError{Resource: "industry", ID: in.IndustryID}
			}
			uc.IndustryID = in.IndustryID
		}

		if err := s.useCases.Update(ctx, uc); err != nil {
			return err
		}

		record, err = s.useCases.GetRecord(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updated use case", zap.Int64("id", id))
	return record, nil
}

// UpdateUseCaseStatus changes only the status of a use case.
func (s *useCaseService) UpdateUseCaseStatus(ctx context.Context, id int64, status string) (*models.UseCaseRecord, error) {
	user := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(user, auth.ActionUpdate); err != nil {
		return nil, err
	}
	if !models.IsValidStatus(status) {
		return nil, apperrors.Invalidf("invalid status '%s'. Valid statuses: %s", status, models.ValidStatusList())
	}
	if status == models.StatusArchived {
		if err := auth.RequirePermission(user, auth.ActionArchive); err != nil {
			return nil, err
		}
	}

	var record *models.UseCaseRecord
	err := s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		uc, err := s.useCases.Get(ctx, id)
		if err != nil {
			return err
		}
		if uc == nil {
			return &apperrors.NotFoundError{Resource: "use case", ID: id}
		}

		uc.Status = status
		if err := s.useCases.Update(ctx, uc); err != nil {
			return err
		}

		record, err = s.useCases.GetRecord(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updated use case status",
		zap.Int64("id", id),
		zap.String("status", status))
	return record, nil
}

// DeleteUseCase removes a use case and returns the deleted record.
func (s *useCaseService) DeleteUseCase(ctx context.Context, id int64) (*models.UseCaseRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionDelete); err != nil {
		return nil, err
	}

	var record *models.UseCaseRecord
	err := s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.useCases.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return &apperrors.NotFoundError{Resource: "use case", ID: id}
		}
		return s.useCases.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted use case",
		zap.Int64("id", id),
		zap.String("title", record.Title))
	return record, nil
}

// FilterUseCases returns use cases matching every provided criterion.
// Absent criteria do not constrain the result.
func (s *useCaseService) FilterUseCases(ctx context.Context, filter models.UseCaseFilter) ([]*models.UseCaseRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	if filter.Status != nil && !models.IsValidStatus(*filter.Status) {
		return nil, apperrors.Invalidf("invalid status '%s'. Valid statuses: %s", *filter.Status, models.ValidStatusList())
	}

	var records []*models.UseCaseRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.useCases.FilterRecords(ctx, filter)
		return err
	})
	return records, err
}

// GetAllIndustries returns every industry.
func (s *useCaseService) GetAllIndustries(ctx context.Context) ([]*models.Industry, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var industries []*models.Industry
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		industries, err = s.industries.List(ctx)
		return err
	})
	return industries, err
}

// GetAllCompanies returns every company with its industry name joined.
func (s *useCaseService) GetAllCompanies(ctx context.Context) ([]*models.CompanyRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var companies []*models.CompanyRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		companies, err = s.companies.ListRecords(ctx)
		return err
	})
	return companies, err
}

// GetAllPersons returns every person with their company name joined.
func (s *useCaseService) GetAllPersons(ctx context.Context) ([]*models.PersonRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var persons []*models.PersonRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		persons, err = s.persons.ListRecords(ctx)
		return err
	})
	return persons, err
}

// GetPersonsByUseCase returns the contributors of a use case.
func (s *useCaseService) GetPersonsByUseCase(ctx context.Context, useCaseID int64) ([]*models.PersonRecord, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var persons []*models.PersonRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		uc, err := s.useCases.Get(ctx, useCaseID)
		if err != nil {
			return err
		}
		if uc == nil {
			return &apperrors.NotFoundError{Resource: "use case", ID: useCaseID}
		}
		persons, err = s.persons.ListRecordsByUseCase(ctx, useCaseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return persons, nil
}

// FindOrCreateIndustry returns the industry with the given name,
// matching case-insensitively, creating it if absent. The lookup only
// needs read permission; the create path needs create permission.
func (s *useCaseService) FindOrCreateIndustry(ctx context.Context, name string) (*models.Industry, error) {
	user := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(user, auth.ActionRead); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperrors.Invalidf("industry name is required")
	}

	var industry *models.Industry
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		industry, err = s.industries.GetByNameFold(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	if industry != nil {
		return industry, nil
	}

	if err := auth.RequirePermission(user, auth.ActionCreate); err != nil {
		return nil, err
	}

	err = s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		// Re-check inside the transaction in case of a concurrent create.
		var err error
		industry, err = s.industries.GetByNameFold(ctx, name)
		if err != nil || industry != nil {
			return err
		}
		industry, err = s.industries.Create(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created industry",
		zap.Int64("id", industry.ID),
		zap.String("name", industry.Name))
	return industry, nil
}

// FindOrCreateCompany returns the company with the given name, matching
// case-insensitively, creating it under industryID if absent. An
// existing company is returned as-is even when industryID differs.
func (s *useCaseService) FindOrCreateCompany(ctx context.Context, name string, industryID int64) (*models.CompanyRecord, error) {
	user := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(user, auth.ActionRead); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperrors.Invalidf("company name is required")
	}

	var record *models.CompanyRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		company, err := s.companies.GetByNameFold(ctx, name)
		if err != nil || company == nil {
			return err
		}
		record, err = s.companies.GetRecord(ctx, company.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	if err := auth.RequirePermission(user, auth.ActionCreate); err != nil {
		return nil, err
	}

	err = s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		company, err := s.companies.GetByNameFold(ctx, name)
		if err != nil {
			return err
		}
		if company == nil {
			industry, err := s.industries.GetByID(ctx, industryID)
			if err != nil {
				return err
			}
			if industry == nil {
				return &apperrors.NotFoundError{Resource: "industry", ID: industryID}
			}
			company, err = s.companies.Create(ctx, name, industryID)
			if err != nil {
				return err
			}
			s.logger.Info("Created company",
				zap.Int64("id", company.ID),
				zap.String("name", company.Name))
		}
		record, err = s.companies.GetRecord(ctx, company.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindOrCreatePerson returns the person identified by (name, companyID),
// matching the name case-insensitively, creating them if absent. When
// the person exists with a different role, the role is updated in
// place, which requires update permission.
func (s *useCaseService) FindOrCreatePerson(ctx context.Context, name, role string, companyID int64) (*models.PersonRecord, error) {
	user := auth.UserFromContext(ctx)
	if err := auth.RequirePermission(user, auth.ActionRead); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperrors.Invalidf("person name is required")
	}

	var existing *models.Person
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		existing, err = s.persons.GetByNameAndCompany(ctx, name, companyID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if role != "" && role != existing.Role {
			if err := auth.RequirePermission(user, auth.ActionUpdate); err != nil {
				return nil, err
			}
			err = s.tx.ReadWrite(ctx, func(ctx context.Context) error {
				return s.persons.UpdateRole(ctx, existing.ID, role)
			})
			if err != nil {
				return nil, err
			}
			s.logger.Info("Updated person role",
				zap.Int64("id", existing.ID),
				zap.String("role", role))
		}
		return s.personRecord(ctx, existing.ID)
	}

	if err := auth.RequirePermission(user, auth.ActionCreate); err != nil {
		return nil, err
	}

	var personID int64
	err = s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		person, err := s.persons.GetByNameAndCompany(ctx, name, companyID)
		if err != nil {
			return err
		}
		if person == nil {
			company, err := s.companies.GetByID(ctx, companyID)
			if err != nil {
				return err
			}
			if company == nil {
				return &apperrors.NotFoundError{Resource: "company", ID: companyID}
			}
			person, err = s.persons.Create(ctx, name, role, companyID)
			if err != nil {
				return err
			}
			s.logger.Info("Created person",
				zap.Int64("id", person.ID),
				zap.String("name", person.Name))
		}
		personID = person.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.personRecord(ctx, personID)
}

// AddContributors links persons to a use case, skipping those already
// linked. Returns how many were added and the resulting contributor count.
func (s *useCaseService) AddContributors(ctx context.Context, useCaseID int64, personIDs []int64) (*models.ContributorResult, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionWrite); err != nil {
		return nil, err
	}

	var result *models.ContributorResult
	err := s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		uc, err := s.useCases.Get(ctx, useCaseID)
		if err != nil {
			return err
		}
		if uc == nil {
			return &apperrors.NotFoundError{Resource: "use case", ID: useCaseID}
		}

		existing, err := s.useCases.Contributors(ctx, useCaseID)
		if err != nil {
			return err
		}
		linked := make(map[int64]bool, len(existing))
		for _, id := range existing {
			linked[id] = true
		}

		var toAdd []int64
		for _, id := range personIDs {
			if linked[id] {
				continue
			}
			person, err := s.persons.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if person == nil {
				return &apperrors.NotFoundError{Resource: "person", ID: id}
			}
			linked[id] = true
			toAdd = append(toAdd, id)
		}

		if len(toAdd) > 0 {
			if err := s.useCases.AddContributors(ctx, useCaseID, toAdd); err != nil {
				return err
			}
		}

		result = &models.ContributorResult{
			UseCaseID:         useCaseID,
			PersonsAdded:      len(toAdd),
			TotalContributors: len(existing) + len(toAdd),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Added contributors",
		zap.Int64("use_case_id", useCaseID),
		zap.Int("persons_added", result.PersonsAdded))
	return result, nil
}

func (s *useCaseService) personRecord(ctx context.Context, id int64) (*models.PersonRecord, error) {
	var record *models.PersonRecord
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.persons.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return &apperrors.NotFoundError{Resource: "person", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
