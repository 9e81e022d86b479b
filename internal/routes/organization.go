package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runOrganizationRouter(secureGroup *echo.Group, orgCtrl *controllers.OrganizationController) {
	orgGroup := secureGroup.Group("/organization")
	{
		orgGroup.POST("", orgCtrl.Create)
		orgGroup.GET("", orgCtrl.GetCurrent)
		orgGroup.PUT("", orgCtrl.Update)
		orgGroup.DELETE("", orgCtrl.Delete)
		orgGroup.POST("/admins", orgCtrl.AddAdmin)
		orgGroup.DELETE("/admins", orgCtrl.RemoveAdmin)
	}
}
