package routes

import (
	"hr-portal/internal/controllers"

	"github.com/labstack/echo/v4"
)

// Выпуск ссылок — за авторизацией; погашение — публичное,
// ссылкой пользуются получатели без сессии.
func runUnlockRouter(api *echo.Group, secureGroup *echo.Group, unlockCtrl *controllers.UnlockController) {
	secureGroup.POST("/attachments/:id/unlock_link", unlockCtrl.IssueAttachmentLink)
	secureGroup.POST("/invoices/:id/unlock_link", unlockCtrl.IssueInvoiceLink)

	api.GET("/attachments/:id/unlock", unlockCtrl.RedeemAttachment)
	api.GET("/invoices/:id/unlock", unlockCtrl.RedeemInvoice)
}
