package services

import (
	"context"
	"testing"
	"time"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/config"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTokenRepo — in-memory реализация хранилища токенов.
type fakeTokenRepo struct {
	tokens []*entities.SecureToken
	nextID uint64
}

func (f *fakeTokenRepo) CreateInTx(ctx context.Context, tx pgx.Tx, token *entities.SecureToken) (*entities.SecureToken, error) {
	f.nextID++
	copied := *token
	copied.ID = f.nextID
	f.tokens = append(f.tokens, &copied)
	return &copied, nil
}

func (f *fakeTokenRepo) DeleteLiveInTx(ctx context.Context, tx pgx.Tx, subjectID uint64, purpose string) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.SubjectID == subjectID && t.Purpose == purpose && t.UsedAt == nil {
			continue
		}
		kept = append(kept, t)
	}
	f.tokens = kept
	return nil
}

func (f *fakeTokenRepo) FindLive(ctx context.Context, subjectID uint64, purpose string) (*entities.SecureToken, error) {
	for i := len(f.tokens) - 1; i >= 0; i-- {
		t := f.tokens[i]
		if t.SubjectID == subjectID && t.Purpose == purpose && t.UsedAt == nil && t.ExpiresAt.After(time.Now()) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTokenRepo) MarkUsedInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	for _, t := range f.tokens {
		if t.ID == id && t.UsedAt == nil {
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return apperrors.ErrSecureLinkInvalid
}

func (f *fakeTokenRepo) DeleteBySubjectInTx(ctx context.Context, tx pgx.Tx, subjectID uint64) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.SubjectID != subjectID {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func newTestTokenService(repo *fakeTokenRepo) TokenServiceInterface {
	cfg := &config.Config{
		Frontend: config.FrontendConfig{BaseURL: "https://portal.example.com"},
		Token: config.TokenConfig{
			Pepper:           "test-pepper",
			InvitationTTL:    72 * time.Hour,
			PasswordResetTTL: 72 * time.Hour,
			AttachmentTTL:    72 * time.Hour,
			InvoiceTTL:       72 * time.Hour,
		},
	}
	return NewTokenService(repo, cfg, zap.NewNop())
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := newTestTokenService(repo)
	ctx := context.Background()

	secret, token, err := svc.IssueInTx(ctx, nil, 42, entities.TokenPurposeInvitation)
	require.NoError(t, err)
	assert.Len(t, secret, 64) // 32 байта в hex
	assert.NotEqual(t, secret, token.SecretHash, "в хранилище не должен попадать открытый секрет")
	assert.True(t, token.ExpiresAt.After(time.Now().Add(71*time.Hour)))

	verified, err := svc.Verify(ctx, 42, entities.TokenPurposeInvitation, secret)
	require.NoError(t, err)
	assert.Equal(t, token.ID, verified.ID)
}

func TestTokenService_VerifyWrongSecret(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := newTestTokenService(repo)
	ctx := context.Background()

	_, _, err := svc.IssueInTx(ctx, nil, 42, entities.TokenPurposeInvitation)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, 42, entities.TokenPurposeInvitation, "deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrSecureLinkInvalid)
}

func TestTokenService_ConsumeIsOneShot(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := newTestTokenService(repo)
	ctx := context.Background()

	secret, token, err := svc.IssueInTx(ctx, nil, 42, entities.TokenPurposePasswordReset)
	require.NoError(t, err)

	require.NoError(t, svc.ConsumeInTx(ctx, nil, token.ID))

	// Повторное погашение и повторная проверка должны отказать одинаково.
	assert.ErrorIs(t, svc.ConsumeInTx(ctx, nil, token.ID), apperrors.ErrSecureLinkInvalid)
	_, err = svc.Verify(ctx, 42, entities.TokenPurposePasswordReset, secret)
	assert.ErrorIs(t, err, apperrors.ErrSecureLinkInvalid)
}

func TestTokenService_ReissueRevokesPrevious(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := newTestTokenService(repo)
	ctx := context.Background()

	firstSecret, _, err := svc.IssueInTx(ctx, nil, 7, entities.TokenPurposeInvitation)
	require.NoError(t, err)
	secondSecret, _, err := svc.IssueInTx(ctx, nil, 7, entities.TokenPurposeInvitation)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, 7, entities.TokenPurposeInvitation, firstSecret)
	assert.ErrorIs(t, err, apperrors.ErrSecureLinkInvalid, "старая ссылка должна быть отозвана")

	_, err = svc.Verify(ctx, 7, entities.TokenPurposeInvitation, secondSecret)
	assert.NoError(t, err)
}

func TestTokenService_ExpiredTokenRejected(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc := newTestTokenService(repo)
	ctx := context.Background()

	secret, token, err := svc.IssueInTx(ctx, nil, 9, entities.TokenPurposeAttachmentUnlock)
	require.NoError(t, err)

	// Просрочиваем вручную.
	for _, stored := range repo.tokens {
		if stored.ID == token.ID {
			stored.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}

	_, err = svc.Verify(ctx, 9, entities.TokenPurposeAttachmentUnlock, secret)
	assert.ErrorIs(t, err, apperrors.ErrSecureLinkInvalid)
}

func TestTokenService_SignupLinkFormat(t *testing.T) {
	svc := newTestTokenService(&fakeTokenRepo{})

	link := svc.SignupLink("ivan+test@example.com", "s3cr3t")
	assert.Equal(t, "https://portal.example.com/auth/signup?token=s3cr3t&email=ivan%2Btest%40example.com", link)
}
