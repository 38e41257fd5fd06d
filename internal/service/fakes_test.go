package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
	"health-metrics/internal/session"
)

// In-memory store fakes backing the service tests.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (f *fakeUserRepo) Init(context.Context) error { return nil }

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, u := range f.users {
		if u.Account == user.Account {
			return 0, repository.ErrDuplicate
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return user.ID, nil
}

func (f *fakeUserRepo) GetByAccount(_ context.Context, account string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Account == account {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(context.Context) ([]domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.User
	for _, u := range f.users {
		cp := *u
		cp.PasswordHash = ""
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id int64, role domain.Role, name, account string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role, u.Name, u.Account = role, name, account
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.FirstLogin = false
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) CountByAccountExcluding(_ context.Context, account string, excludeID int64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, u := range f.users {
		if u.Account == account && u.ID != excludeID {
			count++
		}
	}
	return count, nil
}

type fakeItemRepo struct {
	nextID int64
	items  map[int64]*domain.TestItem
	err    error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{nextID: 1, items: make(map[int64]*domain.TestItem)}
}

func (f *fakeItemRepo) Init(context.Context) error { return nil }

func (f *fakeItemRepo) List(context.Context) ([]domain.TestItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.TestItem
	for _, item := range f.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id int64) (*domain.TestItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItemRepo) Create(_ context.Context, item *domain.TestItem) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	item.ID = f.nextID
	item.CreatedAt = time.Now().UTC()
	if item.ScoreRangeMin == 0 {
		item.ScoreRangeMin = 1
	}
	if item.ScoreRangeMax == 0 {
		item.ScoreRangeMax = 10
	}
	f.nextID++
	cp := *item
	f.items[item.ID] = &cp
	return item.ID, nil
}

func (f *fakeItemRepo) Update(_ context.Context, id int64, name, description string) error {
	item, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	item.Name, item.Description = name, description
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeResultRepo struct {
	nextID  int64
	results map[int64]*domain.TestResult
	err     error
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{nextID: 1, results: make(map[int64]*domain.TestResult)}
}

func (f *fakeResultRepo) Init(context.Context) error { return nil }

func (f *fakeResultRepo) view(r *domain.TestResult) domain.ResultView {
	return domain.ResultView{
		ID:        r.ID,
		Score:     r.Score,
		TestDate:  r.TestDate,
		Notes:     r.Notes,
		PatientID: r.PatientID,
		ItemID:    r.ItemID,
	}
}

func (f *fakeResultRepo) ListAll(context.Context) ([]domain.ResultView, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ResultView
	for _, r := range f.results {
		out = append(out, f.view(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TestDate != out[j].TestDate {
			return strings.Compare(out[i].TestDate, out[j].TestDate) > 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeResultRepo) ListByPatient(_ context.Context, patientID int64) ([]domain.ResultView, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ResultView
	for _, r := range f.results {
		if r.PatientID == patientID {
			out = append(out, f.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeResultRepo) ExistsForPair(_ context.Context, patientID, itemID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.results {
		if r.PatientID == patientID && r.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResultRepo) Create(_ context.Context, result *domain.TestResult) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, r := range f.results {
		if r.PatientID == result.PatientID && r.ItemID == result.ItemID {
			return 0, repository.ErrDuplicate
		}
	}
	result.ID = f.nextID
	result.CreatedAt = time.Now().UTC()
	f.nextID++
	cp := *result
	f.results[result.ID] = &cp
	return result.ID, nil
}

func (f *fakeResultRepo) Update(_ context.Context, id int64, score float64, testDate, notes string, technicianID int64) error {
	if f.err != nil {
		return f.err
	}
	r, ok := f.results[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Score, r.TestDate, r.Notes, r.TechnicianID = score, testDate, notes, technicianID
	return nil
}

func (f *fakeResultRepo) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.results[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.results, id)
	return nil
}

// Session helpers shared by the gate tests.

func newTestSessions() *session.Manager {
	return session.NewManager("service-test-secret", time.Hour)
}

func technicianSession(m *session.Manager, id int64) *session.Session {
	sess, _, _ := m.Create(&domain.User{ID: id, Name: "Tech", Role: domain.RoleTechnician})
	return sess
}

func patientSession(m *session.Manager, id int64, firstLogin bool) *session.Session {
	sess, _, _ := m.Create(&domain.User{ID: id, Name: "Patient", Role: domain.RolePatient, FirstLogin: firstLogin})
	return sess
}
