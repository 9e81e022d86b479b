package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены сессии
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrAccountLocked      = fmt.Errorf("аккаунт временно заблокирован")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound     = fmt.Errorf("запись не найдена")
	ErrBadRequest   = fmt.Errorf("неверный запрос")
	ErrConflict     = fmt.Errorf("конфликт данных")
	ErrUserNotFound = fmt.Errorf("пользователь не найден")

	// Одноразовые секретные ссылки. Причина намеренно общая:
	// нельзя раскрывать, истёк токен, использован или просто не совпал.
	ErrSecureLinkInvalid = fmt.Errorf("ссылка недействительна или срок её действия истёк")
)

// HttpError — ошибка уровня приложения с HTTP-кодом и пользовательским сообщением.
// Технические детали (Err, Context) попадают только в лог, никогда в ответ.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, context map[string]interface{}, details ...interface{}) *HttpError {
	httpErr := &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
	if len(details) > 0 {
		httpErr.Details = details[0]
	}
	return httpErr
}

// Конструкторы по таксономии движка: UNAUTHORIZED / FORBIDDEN / BAD_REQUEST / CONFLICT / NOT_FOUND.

func Unauthorized(message string, err error) *HttpError {
	return NewHttpError(http.StatusUnauthorized, message, err, nil)
}

func Forbidden(message string) *HttpError {
	return NewHttpError(http.StatusForbidden, message, ErrForbidden, nil)
}

func BadRequest(message string, err error) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, err, nil)
}

func Conflict(message string, err error) *HttpError {
	return NewHttpError(http.StatusConflict, message, err, nil)
}

func NotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message, ErrNotFound, nil)
}

// IsCode сообщает, имеет ли ошибка указанный HTTP-код.
func IsCode(err error, code int) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == code
	}
	return false
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
