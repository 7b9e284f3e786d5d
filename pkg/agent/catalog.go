package agent

import (
	"github.com/usecasehq/usecase-engine/pkg/llm"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// Catalog returns the static tool catalog offered to the model. The
// catalog is built once at startup and never mutated afterwards; tool
// descriptions carry the multi-step guidance the model needs to resolve
// human-readable names to numeric ids before dependent calls.
func Catalog() []llm.ToolDefinition {
	statusEnum := models.ValidStatuses

	return []llm.ToolDefinition{
		llm.NewToolDefinition(
			"get_all_use_cases",
			"Retrieve all use cases from the database. "+
				"Use this when the user wants to see all use cases, list use cases, "+
				"or get an overview of everything in the system. "+
				"Returns comprehensive information including title, description, status, "+
				"company, and industry for each use case.",
			nil, nil),

		llm.NewToolDefinition(
			"get_use_case_by_id",
			"Get detailed information about a specific use case by its ID number. "+
				"Use this when the user mentions a specific use case number or ID "+
				"(e.g., 'use case 5', 'UC #3', 'number 7'). "+
				"Returns all details including title, description, status, company, industry, and benefits.",
			map[string]llm.ParameterProperty{
				"use_case_id": {Type: "integer", Description: "The numeric ID of the use case to retrieve (e.g., 1, 2, 3, etc.)"},
			},
			[]string{"use_case_id"}),

		llm.NewToolDefinition(
			"create_use_case",
			"Create a new use case in the database. "+
				"Use this when the user wants to add a new use case, extract use cases from transcripts, "+
				"or create entries based on workshop discussions. "+
				"IMPORTANT: You must provide company_id and industry_id as integers. "+
				"If the user mentions company/industry names, resolve them first with "+
				"get_all_companies and get_all_industries (or create them with the create tools).",
			map[string]llm.ParameterProperty{
				"title":            {Type: "string", Description: "The title/name of the use case (required, must not be empty). Be concise but descriptive."},
				"description":      {Type: "string", Description: "Detailed description of what the use case involves, the problem it solves, and how it works (optional but recommended)"},
				"expected_benefit": {Type: "string", Description: "Expected benefits, value, or outcomes of implementing this use case (optional). Include quantitative metrics if available."},
				"company_id":       {Type: "integer", Description: "ID of the company this use case belongs to (required). This must be a valid company ID number from the database."},
				"industry_id":      {Type: "integer", Description: "ID of the industry this use case belongs to (required). This must be a valid industry ID number from the database."},
				"status": {
					Type: "string",
					Description: "Initial status for the use case (optional, defaults to 'new'). " +
						"Must be EXACTLY one of the valid status values listed in enum. " +
						"Map the user's language/intent to these exact values, e.g. " +
						"'in review'->'in_review', 'working on it'->'in_progress', 'done'->'completed'.",
					Enum: statusEnum,
				},
			},
			[]string{"title", "company_id", "industry_id"}),

		llm.NewToolDefinition(
			"update_use_case",
			"Update an existing use case. Only the fields you provide will be changed; "+
				"all other fields remain unchanged. "+
				"Use this when the user wants to modify, change, or edit a use case. "+
				"You can update any combination of title, description, benefit, status, company, or industry.",
			map[string]llm.ParameterProperty{
				"use_case_id":      {Type: "integer", Description: "ID of the use case to update (required)"},
				"title":            {Type: "string", Description: "New title (optional). If provided, must not be empty."},
				"description":      {Type: "string", Description: "New description (optional)"},
				"expected_benefit": {Type: "string", Description: "New expected benefit (optional)"},
				"status": {
					Type: "string",
					Description: "New status (optional). Must be EXACTLY one of the valid values in enum. " +
						"Translate the user's intent, e.g. 'reviewing'->'in_review', 'ongoing'->'in_progress', 'finished'->'completed'.",
					Enum: statusEnum,
				},
				"company_id":  {Type: "integer", Description: "New company ID (optional). Must be a valid company ID from the database."},
				"industry_id": {Type: "integer", Description: "New industry ID (optional). Must be a valid industry ID from the database."},
			},
			[]string{"use_case_id"}),

		llm.NewToolDefinition(
			"update_use_case_status",
			"Update ONLY the status of a use case. This is a convenience function for status-only changes. "+
				"Use this when the user wants to change, set, or update just the status "+
				"(e.g., 'approve use case 5', 'mark case 3 as completed', 'set UC 7 to in progress'). "+
				"CRITICAL: Always map the user's language/intent to one of the exact valid status values.",
			map[string]llm.ParameterProperty{
				"use_case_id": {Type: "integer", Description: "ID of the use case whose status should be changed"},
				"status": {
					Type: "string",
					Description: "New status value. Must be EXACTLY one of the values in enum. " +
						"Examples: 'reviewing'->'in_review', 'working on'/'ongoing'->'in_progress', 'done'/'finished'->'completed'.",
					Enum: statusEnum,
				},
			},
			[]string{"use_case_id", "status"}),

		llm.NewToolDefinition(
			"delete_use_case",
			"Permanently delete a use case from the database. "+
				"Use this when the user explicitly wants to remove, delete, or eliminate a use case. "+
				"WARNING: This action cannot be undone. The function returns information about "+
				"the deleted use case for confirmation. "+
				"Consider suggesting archiving instead of deletion when appropriate.",
			map[string]llm.ParameterProperty{
				"use_case_id": {Type: "integer", Description: "ID of the use case to delete permanently"},
			},
			[]string{"use_case_id"}),

		llm.NewToolDefinition(
			"filter_use_cases",
			"Filter and search use cases by various criteria. All filters are optional - "+
				"you can use one or combine multiple filters. "+
				"Use this when the user wants use cases matching specific conditions "+
				"(e.g., 'show energy sector use cases', 'what's in progress', 'cases from company X'). "+
				"Returns a list of use cases matching ALL provided filters (AND logic).",
			map[string]llm.ParameterProperty{
				"industry_id": {Type: "integer", Description: "Filter by industry ID (optional). Only return use cases belonging to this specific industry."},
				"company_id":  {Type: "integer", Description: "Filter by company ID (optional). Only return use cases belonging to this specific company."},
				"status": {
					Type:        "string",
					Description: "Filter by status (optional). Only return use cases with this exact status. Must be EXACTLY one of the valid values in enum.",
					Enum:        statusEnum,
				},
				"person_id": {Type: "integer", Description: "Filter by person who contributed (optional). Only return use cases that this specific person contributed to."},
			},
			nil),

		llm.NewToolDefinition(
			"get_all_industries",
			"Get a complete list of all industries with their IDs and names. "+
				"CRITICAL: When a user mentions an industry by NAME (e.g., 'IT', 'Energy', 'Healthcare'), "+
				"you MUST call this function FIRST to find the industry_id, "+
				"THEN use that ID in subsequent calls to filter_use_cases, create_use_case, or update_use_case. "+
				"This is a TWO-STEP process: (1) Call get_all_industries to map name to ID, (2) Use the ID. "+
				"Example: User says 'Show me Energy sector use cases' -> call get_all_industries() -> "+
				"find that Energy has id=1 -> then call filter_use_cases(industry_id=1)",
			nil, nil),

		llm.NewToolDefinition(
			"get_all_companies",
			"Get a complete list of all companies with their IDs, names, and industry information. "+
				"CRITICAL: When a user mentions a company by NAME, "+
				"you MUST call this function FIRST to find the company_id and industry_id, "+
				"THEN use those IDs in subsequent calls to create_use_case, update_use_case, or filter_use_cases. "+
				"This is a TWO-STEP process: (1) Call get_all_companies to map name to IDs, (2) Use the IDs. "+
				"Example: User says 'Create a use case for Siemens' -> call get_all_companies() -> "+
				"find that Siemens Energy has id=1, industry_id=1 -> then call create_use_case(company_id=1, industry_id=1)",
			nil, nil),

		llm.NewToolDefinition(
			"get_all_persons",
			"Get a complete list of all persons with their IDs, names, roles, and company information. "+
				"Use this when the user asks about people, contributors, or who works where. "+
				"When a user mentions a person by name and you need their person_id for filtering, "+
				"call this function first to find the ID, then use it in filter_use_cases(person_id=...).",
			nil, nil),

		llm.NewToolDefinition(
			"get_persons_by_use_case",
			"Get all persons who contributed to a specific use case. "+
				"Use this when the user asks 'Who worked on use case X?', 'Who contributed to...?', "+
				"'Show me the people involved in...', or similar questions about contributors. "+
				"Returns a list of persons with their names, roles, and company information.",
			map[string]llm.ParameterProperty{
				"use_case_id": {Type: "integer", Description: "The ID of the use case to get contributors for"},
			},
			[]string{"use_case_id"}),

		llm.NewToolDefinition(
			"create_industry",
			"Find or create an industry by name. The lookup is case-insensitive: "+
				"if an industry with this name already exists, its record is returned "+
				"and nothing new is created. Use this before create_company when the "+
				"industry the user mentions is not in get_all_industries.",
			map[string]llm.ParameterProperty{
				"name": {Type: "string", Description: "Name of the industry (e.g., 'Energy', 'Healthcare')"},
			},
			[]string{"name"}),

		llm.NewToolDefinition(
			"create_company",
			"Find or create a company by name. The lookup is case-insensitive: "+
				"if a company with this name already exists, its record is returned "+
				"and nothing new is created. A new company requires a valid industry_id; "+
				"resolve it first with get_all_industries or create_industry.",
			map[string]llm.ParameterProperty{
				"name":        {Type: "string", Description: "Name of the company (e.g., 'Siemens Energy')"},
				"industry_id": {Type: "integer", Description: "ID of the industry the company belongs to. Used only when the company does not exist yet."},
			},
			[]string{"name", "industry_id"}),

		llm.NewToolDefinition(
			"create_person",
			"Find or create a person by name within a company. The lookup matches the "+
				"name case-insensitively within the given company. If the person already "+
				"exists with a different role, their role is updated to the provided one. "+
				"A new person requires a valid company_id; resolve it first with "+
				"get_all_companies or create_company.",
			map[string]llm.ParameterProperty{
				"name":       {Type: "string", Description: "Full name of the person (e.g., 'Anna Schmidt')"},
				"role":       {Type: "string", Description: "The person's role or job title (e.g., 'CTO', 'Data Scientist')"},
				"company_id": {Type: "integer", Description: "ID of the company the person works for"},
			},
			[]string{"name", "role", "company_id"}),

		llm.NewToolDefinition(
			"add_persons_to_use_case",
			"Link one or more persons to a use case as contributors. "+
				"Persons already linked are silently skipped, so the call is safe to repeat. "+
				"Use get_all_persons or create_person first to resolve person IDs. "+
				"Returns how many persons were newly added and the total contributor count.",
			map[string]llm.ParameterProperty{
				"use_case_id": {Type: "integer", Description: "ID of the use case to add contributors to"},
				"person_ids":  {Type: "array", Description: "IDs of the persons to link to the use case", Items: &llm.ParameterProperty{Type: "integer"}},
			},
			[]string{"use_case_id", "person_ids"}),
	}
}
