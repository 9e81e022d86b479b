package controllers

import (
	"net/http"

	"hr-portal/internal/entities"
	"hr-portal/internal/services"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UnlockController — выпуск и погашение одноразовых ссылок на закрытые
// ресурсы (вложения и счета).
type UnlockController struct {
	unlockService services.UnlockServiceInterface
	logger        *zap.Logger
}

func NewUnlockController(unlockService services.UnlockServiceInterface, logger *zap.Logger) *UnlockController {
	return &UnlockController{unlockService: unlockService, logger: logger}
}

func (ctrl *UnlockController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *UnlockController) IssueAttachmentLink(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	attachmentID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	link, err := ctrl.unlockService.IssueAttachmentLink(c.Request().Context(), actorID, attachmentID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, link, "Ссылка на вложение выпущена", http.StatusCreated)
}

func (ctrl *UnlockController) IssueInvoiceLink(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	link, err := ctrl.unlockService.IssueInvoiceLink(c.Request().Context(), actorID, invoiceID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, link, "Ссылка на счёт выпущена", http.StatusCreated)
}

func (ctrl *UnlockController) redeem(c echo.Context, purpose string) error {
	resourceID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	secret := c.QueryParam("token")
	if secret == "" {
		return ctrl.errorResponse(c, apperrors.ErrSecureLinkInvalid)
	}

	if err := ctrl.unlockService.Redeem(c.Request().Context(), purpose, resourceID, secret); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Доступ открыт", http.StatusOK)
}

func (ctrl *UnlockController) RedeemAttachment(c echo.Context) error {
	return ctrl.redeem(c, entities.TokenPurposeAttachmentUnlock)
}

func (ctrl *UnlockController) RedeemInvoice(c echo.Context) error {
	return ctrl.redeem(c, entities.TokenPurposeInvoiceUnlock)
}
