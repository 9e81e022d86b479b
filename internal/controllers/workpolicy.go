package controllers

import (
	"net/http"

	"hr-portal/internal/dto"
	"hr-portal/internal/services"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WorkPolicyController struct {
	policyService services.WorkPolicyServiceInterface
	logger        *zap.Logger
}

func NewWorkPolicyController(policyService services.WorkPolicyServiceInterface, logger *zap.Logger) *WorkPolicyController {
	return &WorkPolicyController{policyService: policyService, logger: logger}
}

func (ctrl *WorkPolicyController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *WorkPolicyController) GetPolicy(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	policy, err := ctrl.policyService.GetPolicy(c.Request().Context(), actorID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, policy, "Рабочий регламент", http.StatusOK)
}

func (ctrl *WorkPolicyController) UpdateWorkingHours(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateWorkingHoursDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	policy, err := ctrl.policyService.UpdateWorkingHours(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, policy, "Рабочие часы обновлены", http.StatusOK)
}

func (ctrl *WorkPolicyController) UpdateWorkweek(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateWorkweekDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	policy, err := ctrl.policyService.UpdateWorkweek(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, policy, "Рабочая неделя обновлена", http.StatusOK)
}

func (ctrl *WorkPolicyController) GetHolidays(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	holidays, err := ctrl.policyService.GetHolidays(c.Request().Context(), actorID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, holidays, "Список праздников", http.StatusOK)
}

func (ctrl *WorkPolicyController) CreateHoliday(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.CreateHolidayDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	holiday, err := ctrl.policyService.CreateHoliday(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, holiday, "Праздник добавлен", http.StatusCreated)
}

func (ctrl *WorkPolicyController) DeleteHoliday(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.policyService.DeleteHoliday(c.Request().Context(), actorID, id); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Праздник удалён", http.StatusOK)
}
