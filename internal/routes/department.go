package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runDepartmentRouter(secureGroup *echo.Group, departmentCtrl *controllers.DepartmentController) {
	departmentGroup := secureGroup.Group("/departments")
	{
		departmentGroup.GET("", departmentCtrl.GetDepartments)
		departmentGroup.POST("", departmentCtrl.CreateDepartment)
		departmentGroup.PUT("/:id", departmentCtrl.UpdateDepartment)
		departmentGroup.DELETE("/:id", departmentCtrl.DeleteDepartment)
	}

	teamGroup := secureGroup.Group("/teams")
	{
		teamGroup.GET("", departmentCtrl.GetTeams)
		teamGroup.POST("", departmentCtrl.CreateTeam)
		teamGroup.DELETE("/:id", departmentCtrl.DeleteTeam)
	}
}
