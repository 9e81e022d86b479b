package dto

// UnlockLinkDTO — одноразовая ссылка на вложение или счёт.
type UnlockLinkDTO struct {
	Link      string `json:"link"`
	ExpiresAt string `json:"expires_at"`
}
