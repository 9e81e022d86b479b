package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, authCtrl *controllers.AuthController) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh_token", authCtrl.RefreshToken)
		authGroup.POST("/password_reset/request", authCtrl.RequestPasswordReset)
		authGroup.POST("/password_reset/confirm", authCtrl.ResetPassword)
		authGroup.POST("/signup", authCtrl.AcceptInvitation)
	}

	secureGroup.GET("/auth/me", authCtrl.Me)
}
