package controllers

import (
	"fmt"
	"net/http"
	"time"

	"hr-portal/internal/dto"
	"hr-portal/internal/services"
	"hr-portal/pkg/api"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (ctrl *UserController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

// List — административная выборка учёток (search, filter[role], пагинация).
func (ctrl *UserController) List(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	filter := utils.ParseFilterFromQuery(c.QueryParams())
	users, total, err := ctrl.userService.List(c.Request().Context(), actorID, filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessList(c, "Список пользователей", users, total, filter.Page, filter.Limit)
}

func (ctrl *UserController) Invite(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.InviteUserDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных приглашения", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	response, err := ctrl.userService.Invite(c.Request().Context(), actorID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, response, "Приглашение отправлено", http.StatusCreated)
}

func (ctrl *UserController) Directory(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	entries, err := ctrl.userService.Directory(c.Request().Context(), actorID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, entries, "Справочник сотрудников", http.StatusOK)
}

// ExportDirectory отдаёт справочник в XLSX.
func (ctrl *UserController) ExportDirectory(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	data, err := ctrl.userService.ExportDirectory(c.Request().Context(), actorID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	filename := fmt.Sprintf("directory_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (ctrl *UserController) EditDirectory(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.EditDirectoryDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	entry, err := ctrl.userService.EditDirectory(c.Request().Context(), actorID, targetID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, entry, "Карточка сотрудника обновлена", http.StatusOK)
}

func (ctrl *UserController) UpdateLeaveBalances(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateLeaveBalancesDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	detail, err := ctrl.userService.UpdateLeaveBalances(c.Request().Context(), actorID, targetID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, detail, "Балансы отпусков обновлены", http.StatusOK)
}

func (ctrl *UserController) UpdateCompensation(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	var payload dto.UpdateCompensationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	detail, err := ctrl.userService.UpdateCompensation(c.Request().Context(), actorID, targetID, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, detail, "Данные о вознаграждении обновлены", http.StatusOK)
}

func (ctrl *UserController) Terminate(c echo.Context) error {
	actorID, err := actorIDFromContext(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	if err := ctrl.userService.Terminate(c.Request().Context(), actorID, targetID); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Сотрудник уволен", http.StatusOK)
}
