package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runNotificationRouter(secureGroup *echo.Group, notificationCtrl *controllers.NotificationController) {
	secureGroup.GET("/notifications", notificationCtrl.List)
}
