package dto

import "github.com/aarondl/null/v8"

type CreateOrganizationDTO struct {
	Name       string      `json:"name" validate:"required"`
	Domain     null.String `json:"domain" validate:"omitempty"`
	Timezone   null.String `json:"timezone" validate:"omitempty"`
	Locale     null.String `json:"locale" validate:"omitempty"`
	LogoURL    string      `json:"logo_url" validate:"omitempty,url"`
	OwnerEmail string      `json:"owner_email" validate:"required,email"`
	OwnerName  string      `json:"owner_name" validate:"required"`
}

type CreateOrganizationResponseDTO struct {
	OrganizationID uint64 `json:"organization_id"`
	OwnerID        uint64 `json:"owner_id"`
	InviteLink     string `json:"invite_link"`
	EmailSent      bool   `json:"email_sent"`
}

type UpdateOrganizationDTO struct {
	Name     string      `json:"name" validate:"required"`
	LogoURL  string      `json:"logo_url" validate:"required"`
	Domain   null.String `json:"domain" validate:"omitempty"`
	Timezone null.String `json:"timezone" validate:"omitempty"`
	Locale   null.String `json:"locale" validate:"omitempty"`
}

// DeleteOrganizationDTO — необратимая операция, требует повторной проверки пароля.
type DeleteOrganizationDTO struct {
	ConfirmationPassword string `json:"confirmation_password" validate:"required"`
}

type OrganizationDTO struct {
	ID       uint64      `json:"id"`
	Name     string      `json:"name"`
	Domain   null.String `json:"domain"`
	Timezone null.String `json:"timezone"`
	Locale   null.String `json:"locale"`
	LogoURL  string      `json:"logo_url"`
}

type ChangeAdminDTO struct {
	UserID uint64 `json:"user_id" validate:"required"`
}
