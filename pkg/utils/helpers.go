package utils

import (
	"strings"
	"time"

	apperrors "hr-portal/pkg/errors"
)

const (
	LeaveBalanceMin = 0
	LeaveBalanceMax = 365
)

// NormalizeEmail приводит email к каноническому виду (trim + lowercase).
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitFullName делит ФИО на имя и фамилию. Имя обязательно,
// всё после первого пробела уходит в фамилию.
func SplitFullName(fullName string) (firstName string, lastName string, err error) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "", "", apperrors.NewInvalidInputError("ФИО не может быть пустым")
	}
	firstName = parts[0]
	if len(parts) > 1 {
		lastName = strings.Join(parts[1:], " ")
	}
	return firstName, lastName, nil
}

// ClampLeaveDays молча приводит значение к допустимому диапазону [0, 365].
// Операция обновления балансов тотальна: неверный ввод не является ошибкой.
func ClampLeaveDays(days float64) float64 {
	if days < LeaveBalanceMin {
		return LeaveBalanceMin
	}
	if days > LeaveBalanceMax {
		return LeaveBalanceMax
	}
	return days
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "02.01.2006"}

// ParseDate принимает дату в одном из поддерживаемых форматов.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewInvalidInputError("не удалось разобрать дату: %q", value)
}
