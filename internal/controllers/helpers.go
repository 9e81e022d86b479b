package controllers

import (
	"strconv"

	"hr-portal/pkg/contextkeys"
	apperrors "hr-portal/pkg/errors"

	"github.com/labstack/echo/v4"
)

// actorIDFromContext достаёт ID авторизованного пользователя,
// положенный туда middleware'ом.
func actorIDFromContext(c echo.Context) (uint64, error) {
	userID, ok := c.Request().Context().Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("Неверный идентификатор в пути запроса.", err)
	}
	return id, nil
}
