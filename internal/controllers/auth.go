package controllers

import (
	"net/http"

	"hr-portal/internal/dto"
	"hr-portal/internal/services"
	"hr-portal/pkg/contextkeys"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/service"
	"hr-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthController struct {
	authService services.AuthServiceInterface
	jwtSvc      service.JWTService
	logger      *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	jwtSvc service.JWTService,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService: authService,
		jwtSvc:      jwtSvc,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) respondWithTokens(c echo.Context, userID uint64, message string) error {
	accessToken, refreshToken, err := ctrl.jwtSvc.GenerateTokens(userID)
	if err != nil {
		ctrl.logger.Error("Не удалось сгенерировать токены", zap.Uint64("userID", userID), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.LoginResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(ctrl.jwtSvc.GetAccessTokenTTL().Seconds()),
	}, message, http.StatusOK)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("Login: ошибка привязки данных", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных для входа", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: отказ в авторизации", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return ctrl.respondWithTokens(c, user.ID, "Авторизация прошла успешно")
}

func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	claims, err := ctrl.jwtSvc.ValidateToken(payload.RefreshToken)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if !claims.IsRefreshToken {
		return ctrl.errorResponse(c, apperrors.Unauthorized("Для обновления должен использоваться Refresh токен", apperrors.ErrTokenIsNotRefresh))
	}
	return ctrl.respondWithTokens(c, claims.UserID, "Токены успешно обновлены")
}

func (ctrl *AuthController) Me(c echo.Context) error {
	userID, ok := c.Request().Context().Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		ctrl.logger.Error("Не удалось получить userID из контекста в защищённом маршруте")
		return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
	}
	user, err := ctrl.authService.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "Профиль пользователя", http.StatusOK)
}

func (ctrl *AuthController) RequestPasswordReset(c echo.Context) error {
	var payload dto.RequestPasswordResetDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.authService.RequestPasswordReset(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Если такой email зарегистрирован, на него отправлена ссылка для сброса пароля.", http.StatusOK)
}

func (ctrl *AuthController) ResetPassword(c echo.Context) error {
	var payload dto.ResetPasswordDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.authService.ResetPassword(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Пароль успешно изменён.", http.StatusOK)
}

// AcceptInvitation активирует учётку по одноразовой пригласительной ссылке
// и сразу выдаёт сессию.
func (ctrl *AuthController) AcceptInvitation(c echo.Context) error {
	var payload dto.AcceptInvitationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.BadRequest("Неверный формат данных", err))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.authService.AcceptInvitation(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return ctrl.respondWithTokens(c, user.ID, "Учётная запись активирована")
}
