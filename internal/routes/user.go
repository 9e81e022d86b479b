package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController) {
	userGroup := secureGroup.Group("/users")
	{
		userGroup.GET("", userCtrl.List)
		userGroup.POST("/invite", userCtrl.Invite)
		userGroup.GET("/directory", userCtrl.Directory)
		userGroup.GET("/directory/export", userCtrl.ExportDirectory)
		userGroup.PUT("/:id/directory", userCtrl.EditDirectory)
		userGroup.PUT("/:id/leave_balances", userCtrl.UpdateLeaveBalances)
		userGroup.PUT("/:id/compensation", userCtrl.UpdateCompensation)
		userGroup.POST("/:id/terminate", userCtrl.Terminate)
	}
}
