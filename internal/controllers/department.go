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

type DepartmentController struct {
	departmentService services.DepartmentServiceInterface
	logger            *zap.Logger
}

func NewDepartmentController(departmentService services.DepartmentServiceInterface, logger *zap.Logger) *DepartmentController {
	return &DepartmentController{departmentService: departmentService, logger: logger}
}

func (ctrl *DepartmentController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *DepartmentController) GetDepartments(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	departments, err := ctrl.departmentService.GetDepartments(c.Request().Context(), actorID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, departments, "Список отделов", http.StatusOK)
}

func (ctrl *DepartmentController) CreateDepartment(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.CreateDepartmentDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных отдела", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	created, err := ctrl.departmentService.CreateDepartment(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, created, "Отдел создан", http.StatusCreated)
}

func (ctrl *DepartmentController) UpdateDepartment(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateDepartmentDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	updated, err := ctrl.departmentService.UpdateDepartment(c.Request().Context(), actorID, id, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, updated, "Отдел обновлён", http.StatusOK)
}

func (ctrl *DepartmentController) DeleteDepartment(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.departmentService.DeleteDepartment(c.Request().Context(), actorID, id); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Отдел удалён", http.StatusOK)
}

func (ctrl *DepartmentController) GetTeams(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	teams, err := ctrl.departmentService.GetTeams(c.Request().Context(), actorID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, teams, "Список команд", http.StatusOK)
}

func (ctrl *DepartmentController) CreateTeam(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.CreateTeamDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных команды", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	created, err := ctrl.departmentService.CreateTeam(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, created, "Команда создана", http.StatusCreated)
}

func (ctrl *DepartmentController) DeleteTeam(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.departmentService.DeleteTeam(c.Request().Context(), actorID, id); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Команда удалена", http.StatusOK)
}
