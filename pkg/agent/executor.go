package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/apperrors"
	"github.com/usecasehq/usecase-engine/pkg/llm"
	"github.com/usecasehq/usecase-engine/pkg/models"
	"github.com/usecasehq/usecase-engine/pkg/services"
)

// Dispatcher routes tool calls from the model to the use case service.
// Every domain failure, permission denials included, is reported in-band
// as a {"error": ...} payload so the model can relay it to the user; a
// Go error is returned only for faults in the dispatcher itself.
type Dispatcher struct {
	service services.UseCaseService
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher over the given service.
func NewDispatcher(service services.UseCaseService, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		service: service,
		logger:  logger.Named("dispatcher"),
	}
}

var _ llm.ToolExecutor = (*Dispatcher)(nil)

type useCaseIDArgs struct {
	UseCaseID int64 `json:"use_case_id"`
}

type createUseCaseArgs struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	ExpectedBenefit string `json:"expected_benefit"`
	Status          string `json:"status"`
	CompanyID       int64  `json:"company_id"`
	IndustryID      int64  `json:"industry_id"`
}

type updateUseCaseArgs struct {
	UseCaseID       int64  `json:"use_case_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ExpectedBenefit string `json:"expected_benefit"`
	Status          string `json:"status"`
	CompanyID       int64  `json:"company_id"`
	IndustryID      int64  `json:"industry_id"`
}

type updateStatusArgs struct {
	UseCaseID int64  `json:"use_case_id"`
	Status    string `json:"status"`
}

type filterArgs struct {
	CompanyID  *int64  `json:"company_id"`
	IndustryID *int64  `json:"industry_id"`
	Status     *string `json:"status"`
	PersonID   *int64  `json:"person_id"`
}

type createIndustryArgs struct {
	Name string `json:"name"`
}

type createCompanyArgs struct {
	Name       string `json:"name"`
	IndustryID int64  `json:"industry_id"`
}

type createPersonArgs struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID int64  `json:"company_id"`
}

type addPersonsArgs struct {
	UseCaseID int64   `json:"use_case_id"`
	PersonIDs []int64 `json:"person_ids"`
}

// ExecuteTool executes the named tool with JSON arguments and returns the
// JSON result. A failing tool call never aborts the round: the error
// travels back to the model as data.
func (d *Dispatcher) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	d.logger.Debug("Executing tool",
		zap.String("tool", name),
		zap.String("arguments", arguments))

	result, err := d.dispatch(ctx, name, arguments)
	if err != nil {
		d.logger.Warn("Tool returned error",
			zap.String("tool", name),
			zap.Error(err))
		return errorJSON(err.Error()), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result of %s: %w", name, err)
	}
	return string(payload), nil
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, arguments string) (any, error) {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	switch name {
	case "get_all_use_cases":
		return d.service.GetAllUseCases(ctx)

	case "get_use_case_by_id":
		var args useCaseIDArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.GetUseCaseByID(ctx, args.UseCaseID)

	case "create_use_case":
		var args createUseCaseArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.CreateUseCase(ctx, services.CreateUseCaseInput{
			Title:           args.Title,
			Description:     args.Description,
			ExpectedBenefit: args.ExpectedBenefit,
			Status:          args.Status,
			CompanyID:       args.CompanyID,
			IndustryID:      args.IndustryID,
		})

	case "update_use_case":
		var args updateUseCaseArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.UpdateUseCase(ctx, args.UseCaseID, services.UpdateUseCaseInput{
			Title:           args.Title,
			Description:     args.Description,
			ExpectedBenefit: args.ExpectedBenefit,
			Status:          args.Status,
			CompanyID:       args.CompanyID,
			IndustryID:      args.IndustryID,
		})

	case "update_use_case_status":
		var args updateStatusArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.UpdateUseCaseStatus(ctx, args.UseCaseID, args.Status)

	case "delete_use_case":
		var args useCaseIDArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		record, err := d.service.DeleteUseCase(ctx, args.UseCaseID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": true, "use_case": record}, nil

	case "filter_use_cases":
		var args filterArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.FilterUseCases(ctx, models.UseCaseFilter{
			CompanyID:  args.CompanyID,
			IndustryID: args.IndustryID,
			Status:     args.Status,
			PersonID:   args.PersonID,
		})

	case "get_all_industries":
		return d.service.GetAllIndustries(ctx)

	case "get_all_companies":
		return d.service.GetAllCompanies(ctx)

	case "get_all_persons":
		return d.service.GetAllPersons(ctx)

	case "get_persons_by_use_case":
		var args useCaseIDArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.GetPersonsByUseCase(ctx, args.UseCaseID)

	case "create_industry":
		var args createIndustryArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.FindOrCreateIndustry(ctx, args.Name)

	case "create_company":
		var args createCompanyArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.FindOrCreateCompany(ctx, args.Name, args.IndustryID)

	case "create_person":
		var args createPersonArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.FindOrCreatePerson(ctx, args.Name, args.Role, args.CompanyID)

	case "add_persons_to_use_case":
		var args addPersonsArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return nil, err
		}
		return d.service.AddContributors(ctx, args.UseCaseID, args.PersonIDs)

	default:
		return nil, &apperrors.ToolNotRecognizedError{Tool: name}
	}
}

func unmarshalArgs(arguments string, v any) error {
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return fmt.Errorf("invalid tool arguments: %v", err)
	}
	return nil
}

func errorJSON(msg string) string {
	payload, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"internal error"}`
	}
	return string(payload)
}
