package services

import (
	"context"
	"fmt"
	"testing"

	"hr-portal/internal/authz"
	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	"hr-portal/internal/repositories"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOrgRepo моделирует организацию и число зависимых строк по таблицам.
type fakeOrgRepo struct {
	org              *entities.Organization
	rows             map[string]int
	failOn           string
	identityCascades []uint64
}

// Порядок обхода таблиц при каскадном удалении в фейке.
var fakeCascadeOrder = []string{"invoices", "projects", "teams", "departments", "employment_details", "users"}

func newFakeOrgRepo(org *entities.Organization) *fakeOrgRepo {
	return &fakeOrgRepo{org: org, rows: make(map[string]int)}
}

// snapshot возвращает функцию отката к текущему состоянию.
func (f *fakeOrgRepo) snapshot() func() {
	var orgCopy *entities.Organization
	if f.org != nil {
		v := *f.org
		orgCopy = &v
	}
	rowsCopy := make(map[string]int, len(f.rows))
	for k, v := range f.rows {
		rowsCopy[k] = v
	}
	return func() {
		f.org = orgCopy
		f.rows = rowsCopy
	}
}

func (f *fakeOrgRepo) CountOrganizationsInTx(ctx context.Context, tx pgx.Tx) (uint64, error) {
	if f.org != nil {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeOrgRepo) AcquireCreationLockInTx(ctx context.Context, tx pgx.Tx) error {
	return nil
}

func (f *fakeOrgRepo) CreateInTx(ctx context.Context, tx pgx.Tx, entity *entities.Organization) (*entities.Organization, error) {
	copied := *entity
	copied.ID = 1
	f.org = &copied
	result := copied
	return &result, nil
}

func (f *fakeOrgRepo) FindOrganization(ctx context.Context, id uint64) (*entities.Organization, error) {
	if f.org != nil && f.org.ID == id {
		copied := *f.org
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeOrgRepo) FindCurrent(ctx context.Context) (*entities.Organization, error) {
	if f.org != nil {
		copied := *f.org
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeOrgRepo) UpdateOrganization(ctx context.Context, entity *entities.Organization) (*entities.Organization, error) {
	if f.org == nil || f.org.ID != entity.ID {
		return nil, apperrors.ErrNotFound
	}
	copied := *entity
	f.org = &copied
	result := copied
	return &result, nil
}

func (f *fakeOrgRepo) CascadeDeleteInTx(ctx context.Context, tx pgx.Tx, orgID uint64) error {
	for _, table := range fakeCascadeOrder {
		if table == f.failOn {
			return fmt.Errorf("ошибка каскадного удаления из %s", table)
		}
		delete(f.rows, table)
	}
	f.org = nil
	return nil
}

func (f *fakeOrgRepo) CascadeDeleteIdentityInTx(ctx context.Context, tx pgx.Tx, userID uint64) error {
	f.identityCascades = append(f.identityCascades, userID)
	return nil
}

// rollbackTxManager откатывает состояние фейков при ошибке внутри fn,
// моделируя поведение настоящей транзакции.
type rollbackTxManager struct {
	snapshot func() func()
}

func (m rollbackTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	restore := m.snapshot()
	if err := fn(nil); err != nil {
		restore()
		return err
	}
	return nil
}

func buildOrganizationService(orgRepo *fakeOrgRepo, userRepo *fakeUserRepo, txManager repositories.TxManagerInterface) OrganizationServiceInterface {
	return NewOrganizationService(
		orgRepo,
		userRepo,
		nil,
		nil,
		newTestTokenService(&fakeTokenRepo{}),
		txManager,
		&fakeMailer{},
		zap.NewNop(),
	)
}

func platformSuperAdmin(t *testing.T, password string) *entities.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &entities.User{
		ID:             1,
		Email:          "root@portal.local",
		FirstName:      "Платформа",
		Role:           string(authz.RoleSuperAdmin),
		Status:         entities.UserStatusActive,
		OrganizationID: 0,
		Password:       hash,
	}
}

func TestOrganizationService_DeleteAllOrNothing(t *testing.T) {
	admin := platformSuperAdmin(t, "очень-секретно")
	orgRepo := newFakeOrgRepo(&entities.Organization{ID: 1, Name: "Acme"})
	orgRepo.rows = map[string]int{"invoices": 3, "projects": 2, "users": 5}
	orgRepo.failOn = "projects"
	svc := buildOrganizationService(orgRepo, newFakeUserRepo(admin), rollbackTxManager{snapshot: orgRepo.snapshot})

	err := svc.Delete(context.Background(), 1, dto.DeleteOrganizationDTO{ConfirmationPassword: "очень-секретно"})
	require.Error(t, err)

	// Сбой на середине каскада не оставляет полустёртой организации.
	assert.Equal(t, 3, orgRepo.rows["invoices"], "удалённые до сбоя строки возвращаются откатом")
	assert.Equal(t, 2, orgRepo.rows["projects"])
	_, err = orgRepo.FindCurrent(context.Background())
	assert.NoError(t, err, "организация должна уцелеть")

	orgRepo.failOn = ""
	require.NoError(t, svc.Delete(context.Background(), 1, dto.DeleteOrganizationDTO{ConfirmationPassword: "очень-секретно"}))
	assert.Empty(t, orgRepo.rows)
	_, err = orgRepo.FindCurrent(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrganizationService_DeleteWrongPassword(t *testing.T) {
	admin := platformSuperAdmin(t, "очень-секретно")
	orgRepo := newFakeOrgRepo(&entities.Organization{ID: 1, Name: "Acme"})
	svc := buildOrganizationService(orgRepo, newFakeUserRepo(admin), rollbackTxManager{snapshot: orgRepo.snapshot})

	err := svc.Delete(context.Background(), 1, dto.DeleteOrganizationDTO{ConfirmationPassword: "не тот пароль"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = orgRepo.FindCurrent(context.Background())
	assert.NoError(t, err)
}

func TestOrganizationService_UpdateDetailsPersistsLocalization(t *testing.T) {
	orgRepo := newFakeOrgRepo(&entities.Organization{ID: 1, Name: "Acme", LogoURL: "https://acme.test/logo.png"})
	svc := buildOrganizationService(orgRepo, newFakeUserRepo(orgAdmin()), fakeTxManager{})

	updated, err := svc.UpdateDetails(context.Background(), 1, dto.UpdateOrganizationDTO{
		Name:     "Acme Group",
		LogoURL:  "https://acme.test/new.png",
		Domain:   null.StringFrom("acme.example"),
		Timezone: null.StringFrom("Asia/Dushanbe"),
		Locale:   null.StringFrom("ru-RU"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Group", updated.Name)
	assert.Equal(t, "acme.example", updated.Domain.String)
	assert.Equal(t, "Asia/Dushanbe", updated.Timezone.String)
	assert.Equal(t, "ru-RU", updated.Locale.String)

	stored, err := orgRepo.FindCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acme.example", stored.Domain.String, "локализация сохраняется, а не теряется")
	assert.Equal(t, "Asia/Dushanbe", stored.Timezone.String)
	assert.Equal(t, "ru-RU", stored.Locale.String)
}

func TestOrganizationService_AdminChangeScopedToTenant(t *testing.T) {
	owner := &entities.User{
		ID: 1, Email: "owner@acme.test", FirstName: "Ольга",
		Role: string(authz.RoleOrgOwner), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	outsider := &entities.User{
		ID: 2, Email: "stranger@other.test", FirstName: "Чужой",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 99,
	}
	outsiderAdmin := &entities.User{
		ID: 3, Email: "admin@other.test", FirstName: "Чужая",
		Role: string(authz.RoleOrgAdmin), Status: entities.UserStatusActive, OrganizationID: 99,
	}
	colleague := &entities.User{
		ID: 4, Email: "colleague@acme.test", FirstName: "Свой",
		Role: string(authz.RoleEmployee), Status: entities.UserStatusActive, OrganizationID: 10,
	}
	userRepo := newFakeUserRepo(owner, outsider, outsiderAdmin, colleague)
	svc := buildOrganizationService(newFakeOrgRepo(nil), userRepo, fakeTxManager{})

	err := svc.AddAdmin(context.Background(), 1, dto.ChangeAdminDTO{UserID: 2})
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "чужой сотрудник не повышается")

	err = svc.RemoveAdmin(context.Background(), 1, dto.ChangeAdminDTO{UserID: 3})
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "чужой администратор не понижается")

	require.NoError(t, svc.AddAdmin(context.Background(), 1, dto.ChangeAdminDTO{UserID: 4}))
	promoted, err := userRepo.FindUserByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, string(authz.RoleOrgAdmin), promoted.Role)
}
