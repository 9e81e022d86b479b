package services

import (
	"context"
	"testing"

	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingTxManager считает, сколько раз сервис открывал транзакцию.
type recordingTxManager struct {
	calls int
}

func (m *recordingTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	return fn(nil)
}

type fakeDepartmentRepo struct {
	departments map[uint64]*entities.Department
	teams       *fakeTeamRepo
	nextID      uint64
}

func newFakeDepartmentRepo(departments ...*entities.Department) *fakeDepartmentRepo {
	repo := &fakeDepartmentRepo{departments: make(map[uint64]*entities.Department)}
	for _, d := range departments {
		repo.departments[d.ID] = d
		if d.ID > repo.nextID {
			repo.nextID = d.ID
		}
	}
	return repo
}

func (f *fakeDepartmentRepo) GetDepartments(ctx context.Context, orgID uint64) ([]entities.Department, error) {
	out := make([]entities.Department, 0)
	for _, d := range f.departments {
		if d.OrganizationID == orgID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDepartmentRepo) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	if d, ok := f.departments[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeDepartmentRepo) CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error) {
	f.nextID++
	department.ID = f.nextID
	f.departments[department.ID] = &department
	copied := department
	return &copied, nil
}

func (f *fakeDepartmentRepo) UpsertByNameInTx(ctx context.Context, tx pgx.Tx, orgID uint64, name string) (*entities.Department, error) {
	for _, d := range f.departments {
		if d.OrganizationID == orgID && d.Name == name {
			copied := *d
			return &copied, nil
		}
	}
	return f.CreateDepartment(ctx, entities.Department{OrganizationID: orgID, Name: name})
}

func (f *fakeDepartmentRepo) UpdateDepartment(ctx context.Context, id uint64, name *string, headID *uint64) (*entities.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if name != nil {
		d.Name = *name
	}
	if headID != nil {
		d.HeadID = headID
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDepartmentRepo) DeleteDepartmentInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, ok := f.departments[id]; !ok {
		return apperrors.ErrNotFound
	}
	if f.teams != nil {
		for teamID, team := range f.teams.teams {
			if team.DepartmentID == id {
				delete(f.teams.teams, teamID)
			}
		}
	}
	delete(f.departments, id)
	return nil
}

type fakeTeamRepo struct {
	teams  map[uint64]*entities.Team
	nextID uint64
}

func newFakeTeamRepo(teams ...*entities.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[uint64]*entities.Team)}
	for _, t := range teams {
		repo.teams[t.ID] = t
		if t.ID > repo.nextID {
			repo.nextID = t.ID
		}
	}
	return repo
}

func (f *fakeTeamRepo) GetTeams(ctx context.Context, orgID uint64) ([]entities.Team, error) {
	out := make([]entities.Team, 0)
	for _, t := range f.teams {
		if t.OrganizationID == orgID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	if t, ok := f.teams[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTeamRepo) CreateTeam(ctx context.Context, team entities.Team) (*entities.Team, error) {
	f.nextID++
	team.ID = f.nextID
	f.teams[team.ID] = &team
	copied := team
	return &copied, nil
}

func (f *fakeTeamRepo) UpdateTeam(ctx context.Context, id uint64, name *string, managerID *uint64) (*entities.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if managerID != nil {
		t.ManagerID = managerID
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTeamRepo) DeleteTeamInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, ok := f.teams[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.teams, id)
	return nil
}

func buildDepartmentService(
	departmentRepo *fakeDepartmentRepo,
	teamRepo *fakeTeamRepo,
	userRepo *fakeUserRepo,
	txManager *recordingTxManager,
) DepartmentServiceInterface {
	return NewDepartmentService(departmentRepo, teamRepo, userRepo, txManager, zap.NewNop())
}

func TestDepartmentService_DeleteDepartmentCascadesTeamsAtomically(t *testing.T) {
	departmentRepo := newFakeDepartmentRepo(&entities.Department{ID: 1, OrganizationID: 10, Name: "Продажи"})
	teamRepo := newFakeTeamRepo(&entities.Team{ID: 5, OrganizationID: 10, DepartmentID: 1, Name: "Розница"})
	departmentRepo.teams = teamRepo
	txManager := &recordingTxManager{}
	svc := buildDepartmentService(departmentRepo, teamRepo, newFakeUserRepo(orgAdmin()), txManager)

	require.NoError(t, svc.DeleteDepartment(context.Background(), 1, 1))

	assert.Equal(t, 1, txManager.calls, "удаление отдела должно идти одной транзакцией")
	_, err := departmentRepo.FindDepartment(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = teamRepo.FindTeam(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "команды отдела удаляются вместе с ним")
}

func TestDepartmentService_DeleteTeamTransactional(t *testing.T) {
	teamRepo := newFakeTeamRepo(&entities.Team{ID: 5, OrganizationID: 10, DepartmentID: 1, Name: "Розница"})
	txManager := &recordingTxManager{}
	svc := buildDepartmentService(newFakeDepartmentRepo(), teamRepo, newFakeUserRepo(orgAdmin()), txManager)

	require.NoError(t, svc.DeleteTeam(context.Background(), 1, 5))

	assert.Equal(t, 1, txManager.calls)
	_, err := teamRepo.FindTeam(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDepartmentService_DeleteDepartmentForbiddenForHRAdmin(t *testing.T) {
	departmentRepo := newFakeDepartmentRepo(&entities.Department{ID: 1, OrganizationID: 10, Name: "Продажи"})
	txManager := &recordingTxManager{}
	svc := buildDepartmentService(departmentRepo, newFakeTeamRepo(), newFakeUserRepo(hrAdmin()), txManager)

	err := svc.DeleteDepartment(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, 0, txManager.calls)

	_, err = departmentRepo.FindDepartment(context.Background(), 1)
	assert.NoError(t, err, "отдел должен остаться на месте")
}

func TestDepartmentService_CreateTeamRequiresDepartment(t *testing.T) {
	txManager := &recordingTxManager{}
	svc := buildDepartmentService(newFakeDepartmentRepo(), newFakeTeamRepo(), newFakeUserRepo(orgAdmin()), txManager)

	_, err := svc.CreateTeam(context.Background(), 1, dto.CreateTeamDTO{Name: "Розница", DepartmentID: 42})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
