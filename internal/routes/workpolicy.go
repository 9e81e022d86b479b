package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runWorkPolicyRouter(secureGroup *echo.Group, policyCtrl *controllers.WorkPolicyController) {
	policyGroup := secureGroup.Group("/work_policy")
	{
		policyGroup.GET("", policyCtrl.GetPolicy)
		policyGroup.PUT("/hours", policyCtrl.UpdateWorkingHours)
		policyGroup.PUT("/workweek", policyCtrl.UpdateWorkweek)
		policyGroup.GET("/holidays", policyCtrl.GetHolidays)
		policyGroup.POST("/holidays", policyCtrl.CreateHoliday)
		policyGroup.DELETE("/holidays/:id", policyCtrl.DeleteHoliday)
	}
}
