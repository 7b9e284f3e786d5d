package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/usecasehq/usecase-engine/pkg/models"
)

// passthroughTx runs the unit of work directly. The in-memory fakes below
// keep their state in plain maps, so there is nothing to scope or roll back.
type passthroughTx struct{}

func (passthroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeIndustryRepo struct {
	industries map[int64]*models.Industry
	nextID     int64
}

func newFakeIndustryRepo() *fakeIndustryRepo {
	return &fakeIndustryRepo{industries: make(map[int64]*models.Industry), nextID: 1}
}

func (r *fakeIndustryRepo) add(name string) *models.Industry {
	ind := &models.Industry{ID: r.nextID, Name: name}
	r.industries[ind.ID] = ind
	r.nextID++
	return ind
}

func (r *fakeIndustryRepo) Create(ctx context.Context, name string) (*models.Industry, error) {
	return r.add(name), nil
}

func (r *fakeIndustryRepo) GetByID(ctx context.Context, id int64) (*models.Industry, error) {
	return r.industries[id], nil
}

func (r *fakeIndustryRepo) GetByNameFold(ctx context.Context, name string) (*models.Industry, error) {
	for _, ind := range r.industries {
		if strings.EqualFold(ind.Name, name) {
			return ind, nil
		}
	}
	return nil, nil
}

func (r *fakeIndustryRepo) List(ctx context.Context) ([]*models.Industry, error) {
	out := make([]*models.Industry, 0, len(r.industries))
	for _, ind := range r.industries {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCompanyRepo struct {
	companies  map[int64]*models.Company
	industries *fakeIndustryRepo
	nextID     int64
}

func newFakeCompanyRepo(industries *fakeIndustryRepo) *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[int64]*models.Company), industries: industries, nextID: 1}
}

func (r *fakeCompanyRepo) add(name string, industryID int64) *models.Company {
	c := &models.Company{ID: r.nextID, Name: name, IndustryID: industryID}
	r.companies[c.ID] = c
	r.nextID++
	return c
}

func (r *fakeCompanyRepo) Create(ctx context.Context, name string, industryID int64) (*models.Company, error) {
	return r.add(name, industryID), nil
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.companies[id], nil
}

func (r *fakeCompanyRepo) GetByNameFold(ctx context.Context, name string) (*models.Company, error) {
	for _, c := range r.companies {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) record(c *models.Company) *models.CompanyRecord {
	rec := &models.CompanyRecord{ID: c.ID, Name: c.Name, IndustryID: c.IndustryID}
	if ind := r.industries.industries[c.IndustryID]; ind != nil {
		rec.IndustryName = ind.Name
	}
	return rec
}

func (r *fakeCompanyRepo) GetRecord(ctx context.Context, id int64) (*models.CompanyRecord, error) {
	c := r.companies[id]
	if c == nil {
		return nil, nil
	}
	return r.record(c), nil
}

func (r *fakeCompanyRepo) ListRecords(ctx context.Context) ([]*models.CompanyRecord, error) {
	out := make([]*models.CompanyRecord, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, r.record(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePersonRepo struct {
	persons   map[int64]*models.Person
	companies *fakeCompanyRepo
	links     *fakeUseCaseRepo
	nextID    int64
}

func newFakePersonRepo(companies *fakeCompanyRepo) *fakePersonRepo {
	return &fakePersonRepo{persons: make(map[int64]*models.Person), companies: companies, nextID: 1}
}

func (r *fakePersonRepo) add(name, role string, companyID int64) *models.Person {
	p := &models.Person{ID: r.nextID, Name: name, Role: role, CompanyID: companyID}
	r.persons[p.ID] = p
	r.nextID++
	return p
}

func (r *fakePersonRepo) Create(ctx context.Context, name, role string, companyID int64) (*models.Person, error) {
	return r.add(name, role, companyID), nil
}

func (r *fakePersonRepo) GetByID(ctx context.Context, id int64) (*models.Person, error) {
	return r.persons[id], nil
}

func (r *fakePersonRepo) GetByNameAndCompany(ctx context.Context, name string, companyID int64) (*models.Person, error) {
	for _, p := range r.persons {
		if strings.EqualFold(p.Name, name) && p.CompanyID == companyID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePersonRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	if p := r.persons[id]; p != nil {
		p.Role = role
	}
	return nil
}

func (r *fakePersonRepo) record(p *models.Person) *models.PersonRecord {
	rec := &models.PersonRecord{ID: p.ID, Name: p.Name, Role: p.Role, CompanyID: p.CompanyID}
	if c := r.companies.companies[p.CompanyID]; c != nil {
		rec.CompanyName = c.Name
	}
	return rec
}

func (r *fakePersonRepo) GetRecord(ctx context.Context, id int64) (*models.PersonRecord, error) {
	p := r.persons[id]
	if p == nil {
		return nil, nil
	}
	return r.record(p), nil
}

func (r *fakePersonRepo) ListRecords(ctx context.Context) ([]*models.PersonRecord, error) {
	out := make([]*models.PersonRecord, 0, len(r.persons))
	for _, p := range r.persons {
		out = append(out, r.record(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePersonRepo) ListRecordsByUseCase(ctx context.Context, useCaseID int64) ([]*models.PersonRecord, error) {
	var out []*models.PersonRecord
	for _, id := range r.links.contributors[useCaseID] {
		if p := r.persons[id]; p != nil {
			out = append(out, r.record(p))
		}
	}
	return out, nil
}

type fakeUseCaseRepo struct {
	useCases     map[int64]*models.UseCase
	contributors map[int64][]int64
	companies    *fakeCompanyRepo
	industries   *fakeIndustryRepo
	nextID       int64
}

func newFakeUseCaseRepo(companies *fakeCompanyRepo, industries *fakeIndustryRepo) *fakeUseCaseRepo {
	return &fakeUseCaseRepo{
		useCases:     make(map[int64]*models.UseCase),
		contributors: make(map[int64][]int64),
		companies:    companies,
		industries:   industries,
		nextID:       1,
	}
}

func (r *fakeUseCaseRepo) Create(ctx context.Context, uc *models.UseCase) error {
	uc.ID = r.nextID
	r.nextID++
	stored := *uc
	r.useCases[uc.ID] = &stored
	return nil
}

func (r *fakeUseCaseRepo) Get(ctx context.Context, id int64) (*models.UseCase, error) {
	uc := r.useCases[id]
	if uc == nil {
		return nil, nil
	}
	copied := *uc
	return &copied, nil
}

func (r *fakeUseCaseRepo) record(uc *models.UseCase) *models.UseCaseRecord {
	rec := &models.UseCaseRecord{
		ID:              uc.ID,
		Title:           uc.Title,
		Description:     uc.Description,
		ExpectedBenefit: uc.ExpectedBenefit,
		Status:          uc.Status,
		CompanyID:       uc.CompanyID,
		IndustryID:      uc.IndustryID,
	}
	if c := r.companies.companies[uc.CompanyID]; c != nil {
		rec.CompanyName = c.Name
	}
	if ind := r.industries.industries[uc.IndustryID]; ind != nil {
		rec.IndustryName = ind.Name
	}
	return rec
}

func (r *fakeUseCaseRepo) GetRecord(ctx context.Context, id int64) (*models.UseCaseRecord, error) {
	uc := r.useCases[id]
	if uc == nil {
		return nil, nil
	}
	return r.record(uc), nil
}

func (r *fakeUseCaseRepo) Update(ctx context.Context, uc *models.UseCase) error {
	stored := *uc
	r.useCases[uc.ID] = &stored
	return nil
}

func (r *fakeUseCaseRepo) Delete(ctx context.Context, id int64) error {
	delete(r.useCases, id)
	delete(r.contributors, id)
	return nil
}

func (r *fakeUseCaseRepo) ListRecords(ctx context.Context) ([]*models.UseCaseRecord, error) {
	out := make([]*models.UseCaseRecord, 0, len(r.useCases))
	for _, uc := range r.useCases {
		out = append(out, r.record(uc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUseCaseRepo) FilterRecords(ctx context.Context, filter models.UseCaseFilter) ([]*models.UseCaseRecord, error) {
	var out []*models.UseCaseRecord
	for _, uc := range r.useCases {
		if filter.CompanyID != nil && uc.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.IndustryID != nil && uc.IndustryID != *filter.IndustryID {
			continue
		}
		if filter.Status != nil && uc.Status != *filter.Status {
			continue
		}
		if filter.PersonID != nil {
			found := false
			for _, pid := range r.contributors[uc.ID] {
				if pid == *filter.PersonID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, r.record(uc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUseCaseRepo) Contributors(ctx context.Context, useCaseID int64) ([]int64, error) {
	return r.contributors[useCaseID], nil
}

func (r *fakeUseCaseRepo) AddContributors(ctx context.Context, useCaseID int64, personIDs []int64) error {
	existing := make(map[int64]bool)
	for _, id := range r.contributors[useCaseID] {
		existing[id] = true
	}
	for _, id := range personIDs {
		if !existing[id] {
			r.contributors[useCaseID] = append(r.contributors[useCaseID], id)
			existing[id] = true
		}
	}
	return nil
}

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

type fakeAgentMessageRepo struct {
	conversations map[uuid.UUID][]*models.AgentMessage
}

func newFakeAgentMessageRepo() *fakeAgentMessageRepo {
	return &fakeAgentMessageRepo{conversations: make(map[uuid.UUID][]*models.AgentMessage)}
}

func (r *fakeAgentMessageRepo) Save(ctx context.Context, msg *models.AgentMessage) error {
	r.conversations[msg.ConversationID] = append(r.conversations[msg.ConversationID], msg)
	return nil
}

func (r *fakeAgentMessageRepo) GetConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]*models.AgentMessage, error) {
	msgs := r.conversations[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *fakeAgentMessageRepo) Clear(ctx context.Context, conversationID uuid.UUID) error {
	delete(r.conversations, conversationID)
	return nil
}
