// Package apperr задаёт закрытый набор видов ошибок сервиса.
// Проверка "это исчерпание квоты?" делается типобезопасно через KindOf,
// а не сравнением строковых кодов.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — вид ошибки из закрытого перечня.
type Kind string

const (
	// KindInvalidArgument — некорректные или отсутствующие входные поля.
	KindInvalidArgument Kind = "invalid_argument"
	// KindResourceExhausted — именованный счётчик квоты исчерпан.
	KindResourceExhausted Kind = "resource_exhausted"
	// KindPermissionDenied — пользователь не подтверждён провайдером подписок.
	KindPermissionDenied Kind = "permission_denied"
	// KindNotFound — запрошенный профиль или запись отсутствует.
	KindNotFound Kind = "not_found"
	// KindInternal — любая прочая неожиданная ошибка.
	KindInternal Kind = "internal"
)

// Error — ошибка сервиса с видом, сообщением для клиента и причиной.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданного вида без причины.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap создаёт ошибку заданного вида поверх причины.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf возвращает вид ошибки. Всё, что не является *Error,
// считается KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind сообщает, имеет ли ошибка заданный вид.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message возвращает сообщение для клиента. Для ошибок вида KindInternal
// детали причины наружу не отдаются.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Msg
	}
	return "internal server error"
}
