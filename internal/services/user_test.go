package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"hr-portal/internal/authz"
	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/eventbus"
	"hr-portal/pkg/mailer"
	"hr-portal/pkg/types"
	"hr-portal/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTxManager исполняет функцию без реальной транзакции.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	users  map[uint64]*entities.User
	nextID uint64
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint64]*entities.User)}
	for _, u := range users {
		repo.users[u.ID] = u
		if u.ID > repo.nextID {
			repo.nextID = u.ID
		}
	}
	return repo
}

func (f *fakeUserRepo) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	out := make([]entities.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindByEmailInTx(ctx context.Context, tx pgx.Tx, email string) (*entities.User, error) {
	return f.FindByEmail(ctx, email)
}

func (f *fakeUserRepo) CreateUserInTx(ctx context.Context, tx pgx.Tx, entity *entities.User) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == entity.Email {
			return nil, apperrors.Conflict("Пользователь с таким email уже существует.", nil)
		}
	}
	f.nextID++
	copied := *entity
	copied.ID = f.nextID
	f.users[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeUserRepo) UpdatePasswordInTx(ctx context.Context, tx pgx.Tx, userID uint64, newPasswordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Password = newPasswordHash
	u.Status = entities.UserStatusActive
	return nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, userID uint64, role string) error {
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, userID uint64, status string) error {
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) ListByOrganization(ctx context.Context, orgID uint64) ([]entities.User, error) {
	out := make([]entities.User, 0)
	for _, u := range f.users {
		if u.OrganizationID == orgID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeEmploymentRepo struct {
	byUser map[uint64]*entities.EmploymentDetail
	nextID uint64
}

func newFakeEmploymentRepo(details ...*entities.EmploymentDetail) *fakeEmploymentRepo {
	repo := &fakeEmploymentRepo{byUser: make(map[uint64]*entities.EmploymentDetail)}
	for _, d := range details {
		repo.byUser[d.UserID] = d
	}
	return repo
}

func (f *fakeEmploymentRepo) CreateInTx(ctx context.Context, tx pgx.Tx, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error) {
	f.nextID++
	copied := *entity
	copied.ID = f.nextID
	f.byUser[copied.UserID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeEmploymentRepo) FindByUserID(ctx context.Context, userID uint64) (*entities.EmploymentDetail, error) {
	if d, ok := f.byUser[userID]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeEmploymentRepo) Update(ctx context.Context, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error) {
	f.byUser[entity.UserID] = entity
	return entity, nil
}

func (f *fakeEmploymentRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error) {
	return f.Update(ctx, entity)
}

func (f *fakeEmploymentRepo) UpdateLeaveBalances(ctx context.Context, userID uint64, casual, sick, earned float64) (*entities.EmploymentDetail, error) {
	d, ok := f.byUser[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	d.CasualLeaveBalance = casual
	d.SickLeaveBalance = sick
	d.EarnedLeaveBalance = earned
	copied := *d
	return &copied, nil
}

func (f *fakeEmploymentRepo) UpdateCompensation(ctx context.Context, userID uint64, baseSalary float64, currency string) (*entities.EmploymentDetail, error) {
	d, ok := f.byUser[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	d.BaseSalary.SetValid(baseSalary)
	d.Currency.SetValid(currency)
	copied := *d
	return &copied, nil
}

func (f *fakeEmploymentRepo) ListByOrganization(ctx context.Context, orgID uint64) ([]entities.EmploymentDetail, error) {
	out := make([]entities.EmploymentDetail, 0)
	for _, d := range f.byUser {
		if d.OrganizationID == orgID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// fakeMailer возвращает заданную ошибку и запоминает отправленное.
type fakeMailer struct {
	err  error
	sent []mailer.Message
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func buildUserService(userRepo *fakeUserRepo, employmentRepo *fakeEmploymentRepo, mailerService *fakeMailer) UserServiceInterface {
	return NewUserService(
		userRepo,
		employmentRepo,
		nil,
		nil,
		newTestTokenService(&fakeTokenRepo{}),
		fakeTxManager{},
		mailerService,
		eventbus.New(zap.NewNop()),
		zap.NewNop(),
	)
}

func hrAdmin() *entities.User {
	return &entities.User{
		ID:             1,
		Email:          "hr@acme.test",
		FirstName:      "Анна",
		LastName:       "Кадровая",
		Role:           string(authz.RoleHRAdmin),
		Status:         entities.UserStatusActive,
		OrganizationID: 10,
	}
}

func orgAdmin() *entities.User {
	return &entities.User{
		ID:             1,
		Email:          "admin@acme.test",
		FirstName:      "Ольга",
		LastName:       "Распорядительная",
		Role:           string(authz.RoleOrgAdmin),
		Status:         entities.UserStatusActive,
		OrganizationID: 10,
	}
}

func TestUserService_InviteDelegationDenied(t *testing.T) {
	svc := buildUserService(newFakeUserRepo(hrAdmin()), newFakeEmploymentRepo(), &fakeMailer{})

	// HR_ADMIN нанимает рядовых сотрудников, но не руководителей.
	_, err := svc.Invite(context.Background(), 1, dto.InviteUserDTO{
		FullName:     "Пётр Руководящий",
		Email:        "petr@acme.test",
		Role:         string(authz.RoleManager),
		EmployeeCode: "EMP-2",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserService_InviteUnknownRole(t *testing.T) {
	svc := buildUserService(newFakeUserRepo(hrAdmin()), newFakeEmploymentRepo(), &fakeMailer{})

	_, err := svc.Invite(context.Background(), 1, dto.InviteUserDTO{
		FullName:     "Пётр Петров",
		Email:        "petr@acme.test",
		Role:         "JANITOR",
		EmployeeCode: "EMP-2",
	})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
}

func TestUserService_InviteSuccess(t *testing.T) {
	userRepo := newFakeUserRepo(hrAdmin())
	employmentRepo := newFakeEmploymentRepo()
	mailerService := &fakeMailer{}
	svc := buildUserService(userRepo, employmentRepo, mailerService)

	resp, err := svc.Invite(context.Background(), 1, dto.InviteUserDTO{
		FullName:     "Иван Иванов",
		Email:        "Ivan@Acme.Test",
		Role:         string(authz.RoleEmployee),
		EmployeeCode: "EMP-2",
		StartDate:    "2026-09-14",
	})
	require.NoError(t, err)

	assert.True(t, resp.EmailSent)
	assert.Contains(t, resp.InviteLink, "/auth/signup?token=")
	assert.Contains(t, resp.InviteLink, "email=ivan%40acme.test")

	created, err := userRepo.FindUserByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ivan@acme.test", created.Email, "email нормализуется при приглашении")
	assert.Equal(t, entities.UserStatusInactive, created.Status, "до принятия приглашения учётка неактивна")
	assert.Equal(t, uint64(10), created.OrganizationID, "приглашённый попадает в организацию актора")
	require.NotNil(t, created.InvitedByID)
	assert.Equal(t, uint64(1), *created.InvitedByID)

	detail, err := employmentRepo.FindByUserID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "EMP-2", detail.EmployeeCode)
	require.NotNil(t, detail.StartDate)
	assert.Equal(t, "2026-09-14", detail.StartDate.Format("2006-01-02"))

	require.Len(t, mailerService.sent, 1)
	assert.Contains(t, mailerService.sent[0].Text, resp.InviteLink)
}

func TestUserService_InviteMailFailureDoesNotFail(t *testing.T) {
	userRepo := newFakeUserRepo(hrAdmin())
	svc := buildUserService(userRepo, newFakeEmploymentRepo(), &fakeMailer{err: mailer.ErrNotConfigured})

	resp, err := svc.Invite(context.Background(), 1, dto.InviteUserDTO{
		FullName:     "Иван Иванов",
		Email:        "ivan@acme.test",
		Role:         string(authz.RoleEmployee),
		EmployeeCode: "EMP-2",
	})
	require.NoError(t, err)

	assert.False(t, resp.EmailSent, "провал письма не откатывает приглашение")
	assert.True(t, strings.HasPrefix(resp.InviteLink, "https://portal.example.com/"))

	_, err = userRepo.FindUserByID(context.Background(), resp.UserID)
	assert.NoError(t, err, "учётка должна остаться созданной")
}

func TestUserService_UpdateLeaveBalancesClamped(t *testing.T) {
	actor := orgAdmin()
	target := &entities.User{
		ID: 2, Email: "ivan@acme.test", FirstName: "Иван",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	employmentRepo := newFakeEmploymentRepo(&entities.EmploymentDetail{
		ID: 1, UserID: 2, OrganizationID: 10, EmployeeCode: "EMP-2",
		CasualLeaveBalance: 10, SickLeaveBalance: 5, EarnedLeaveBalance: 3,
	})
	svc := buildUserService(newFakeUserRepo(actor, target), employmentRepo, &fakeMailer{})

	detail, err := svc.UpdateLeaveBalances(context.Background(), 1, 2, dto.UpdateLeaveBalancesDTO{
		CasualLeave: utils.ToPtr(400.0),
		SickLeave:   utils.ToPtr(-5.0),
	})
	require.NoError(t, err)

	assert.Equal(t, 365.0, detail.CasualLeaveBalance, "значение выше максимума обрезается")
	assert.Equal(t, 0.0, detail.SickLeaveBalance, "отрицательное значение обрезается до нуля")
	assert.Equal(t, 3.0, detail.EarnedLeaveBalance, "непереданное поле не меняется")
}

func TestUserService_UpdateLeaveBalancesForbiddenForManager(t *testing.T) {
	actor := &entities.User{
		ID: 1, Email: "manager@acme.test", FirstName: "Олег",
		Role: string(authz.RoleManager), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	svc := buildUserService(newFakeUserRepo(actor), newFakeEmploymentRepo(), &fakeMailer{})

	_, err := svc.UpdateLeaveBalances(context.Background(), 1, 2, dto.UpdateLeaveBalancesDTO{CasualLeave: utils.ToPtr(10.0)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserService_UpdateLeaveBalancesForbiddenForHRAdmin(t *testing.T) {
	actor := hrAdmin()
	target := &entities.User{
		ID: 2, Email: "ivan@acme.test", FirstName: "Иван",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	employmentRepo := newFakeEmploymentRepo(&entities.EmploymentDetail{
		ID: 1, UserID: 2, OrganizationID: 10, EmployeeCode: "EMP-2", CasualLeaveBalance: 10,
	})
	svc := buildUserService(newFakeUserRepo(actor, target), employmentRepo, &fakeMailer{})

	// Кадровик распоряжается компенсацией, но не отпускными балансами.
	_, err := svc.UpdateLeaveBalances(context.Background(), 1, 2, dto.UpdateLeaveBalancesDTO{CasualLeave: utils.ToPtr(20.0)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	detail, err := employmentRepo.FindByUserID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, detail.CasualLeaveBalance, "баланс не должен измениться")
}

func TestUserService_TerminateSelfForbidden(t *testing.T) {
	actor := hrAdmin()
	svc := buildUserService(newFakeUserRepo(actor), newFakeEmploymentRepo(), &fakeMailer{})

	err := svc.Terminate(context.Background(), actor.ID, actor.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserService_InviteDuplicateEmailConflict(t *testing.T) {
	existing := &entities.User{
		ID: 2, Email: "ivan@acme.test", FirstName: "Иван",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	svc := buildUserService(newFakeUserRepo(hrAdmin(), existing), newFakeEmploymentRepo(), &fakeMailer{})

	// Email сравнивается в нормализованном виде.
	_, err := svc.Invite(context.Background(), 1, dto.InviteUserDTO{
		FullName:     "Иван Второй",
		Email:        "Ivan@Acme.Test",
		Role:         string(authz.RoleEmployee),
		EmployeeCode: "EMP-3",
	})
	assert.True(t, apperrors.IsCode(err, http.StatusConflict))
}

func TestUserService_EditDirectoryCreatesDepartmentByName(t *testing.T) {
	actor := orgAdmin()
	target := &entities.User{
		ID: 2, Email: "ivan@acme.test", FirstName: "Иван", LastName: "Иванов",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	employmentRepo := newFakeEmploymentRepo(&entities.EmploymentDetail{
		ID: 1, UserID: 2, OrganizationID: 10, EmployeeCode: "EMP-2",
	})
	departmentRepo := newFakeDepartmentRepo()
	svc := NewUserService(
		newFakeUserRepo(actor, target),
		employmentRepo,
		departmentRepo,
		nil,
		newTestTokenService(&fakeTokenRepo{}),
		fakeTxManager{},
		&fakeMailer{},
		eventbus.New(zap.NewNop()),
		zap.NewNop(),
	)

	entry, err := svc.EditDirectory(context.Background(), 1, 2, dto.EditDirectoryDTO{
		DepartmentName: null.StringFrom("Финансы"),
	})
	require.NoError(t, err)

	require.NotNil(t, entry.DepartmentID)
	dept, err := departmentRepo.FindDepartment(context.Background(), *entry.DepartmentID)
	require.NoError(t, err)
	assert.Equal(t, "Финансы", dept.Name)
	assert.Equal(t, uint64(10), dept.OrganizationID)
	assert.Equal(t, "Финансы", entry.DepartmentName.String)

	detail, err := employmentRepo.FindByUserID(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, detail.DepartmentID)
	assert.Equal(t, dept.ID, *detail.DepartmentID, "кадровая карточка ссылается на созданный отдел")

	// Повторное указание того же имени не плодит дубликаты.
	entry2, err := svc.EditDirectory(context.Background(), 1, 2, dto.EditDirectoryDTO{
		DepartmentName: null.StringFrom("Финансы"),
	})
	require.NoError(t, err)
	assert.Equal(t, *entry.DepartmentID, *entry2.DepartmentID)
}

func TestUserService_TerminateRevokesTokens(t *testing.T) {
	actor := orgAdmin()
	target := &entities.User{
		ID: 2, Email: "ivan@acme.test", FirstName: "Иван",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	userRepo := newFakeUserRepo(actor, target)
	tokenRepo := &fakeTokenRepo{}
	tokenSvc := newTestTokenService(tokenRepo)
	orgRepo := newFakeOrgRepo(nil)
	svc := NewUserService(
		userRepo,
		newFakeEmploymentRepo(&entities.EmploymentDetail{ID: 1, UserID: 2, OrganizationID: 10}),
		nil,
		orgRepo,
		tokenSvc,
		fakeTxManager{},
		&fakeMailer{},
		eventbus.New(zap.NewNop()),
		zap.NewNop(),
	)

	_, _, err := tokenSvc.IssueInTx(context.Background(), nil, 2, entities.TokenPurposeInvitation)
	require.NoError(t, err)

	require.NoError(t, svc.Terminate(context.Background(), 1, 2))

	terminated, err := userRepo.FindUserByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, entities.UserStatusTerminated, terminated.Status)
	assert.Empty(t, tokenRepo.tokens, "живые ссылки уволенного должны быть отозваны")
	assert.Equal(t, []uint64{2}, orgRepo.identityCascades)
}
