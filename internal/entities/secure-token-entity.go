// Файл: internal/entities/secure-token-entity.go
package entities

import (
	"time"

	"hr-portal/pkg/types"
)

// Назначения одноразовых токенов.
const (
	TokenPurposeInvitation       = "invitation"
	TokenPurposePasswordReset    = "password_reset"
	TokenPurposeAttachmentUnlock = "attachment_unlock"
	TokenPurposeInvoiceUnlock    = "invoice_unlock"
)

// SecureToken — одноразовый секрет. Хранится только хэш:
// компрометация таблицы не даёт рабочих ссылок.
// Валиден, пока used_at IS NULL и now < expires_at.
type SecureToken struct {
	ID         uint64     `json:"id" db:"id"`
	SubjectID  uint64     `json:"subject_id" db:"subject_id"`
	Purpose    string     `json:"purpose" db:"purpose"`
	SecretHash string     `json:"-" db:"secret_hash"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt     *time.Time `json:"used_at" db:"used_at"`

	types.BaseEntity
}
