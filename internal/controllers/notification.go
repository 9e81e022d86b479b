package controllers

import (
	"net/http"
	"strconv"

	"hr-portal/internal/services"
	"hr-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NotificationController struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationController(notificationService services.NotificationServiceInterface, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: notificationService, logger: logger}
}

func (ctrl *NotificationController) List(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	limit, _ := strconv.ParseUint(c.QueryParam("limit"), 10, 64)
	notifications, err := ctrl.notificationService.List(c.Request().Context(), actorID, limit)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, notifications, "Объявления", http.StatusOK)
}
