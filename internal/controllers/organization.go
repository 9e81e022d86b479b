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

type OrganizationController struct {
	orgService services.OrganizationServiceInterface
	logger     *zap.Logger
}

func NewOrganizationController(orgService services.OrganizationServiceInterface, logger *zap.Logger) *OrganizationController {
	return &OrganizationController{orgService: orgService, logger: logger}
}

func (ctrl *OrganizationController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *OrganizationController) Create(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.CreateOrganizationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных организации", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	response, err := ctrl.orgService.Create(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, response, "Организация создана", http.StatusCreated)
}

func (ctrl *OrganizationController) GetCurrent(c echo.Context) error {
	if _, err := actorIDFromContext(c); err != nil {
		return ctrl.errorResponse(c, err)
	}
	org, err := ctrl.orgService.GetCurrent(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.OrganizationDTO{
		ID:       org.ID,
		Name:     org.Name,
		Domain:   org.Domain,
		Timezone: org.Timezone,
		Locale:   org.Locale,
		LogoURL:  org.LogoURL,
	}, "Организация", http.StatusOK)
}

func (ctrl *OrganizationController) Update(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateOrganizationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	org, err := ctrl.orgService.UpdateDetails(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, org, "Данные организации обновлены", http.StatusOK)
}

// Delete — необратимое каскадное удаление организации.
func (ctrl *OrganizationController) Delete(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.DeleteOrganizationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.orgService.Delete(c.Request().Context(), actorID, payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Организация удалена", http.StatusOK)
}

func (ctrl *OrganizationController) AddAdmin(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.ChangeAdminDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.orgService.AddAdmin(c.Request().Context(), actorID, payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Администратор назначен", http.StatusOK)
}

func (ctrl *OrganizationController) RemoveAdmin(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.ChangeAdminDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.orgService.RemoveAdmin(c.Request().Context(), actorID, payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Администратор снят", http.StatusOK)
}
