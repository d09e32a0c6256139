// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразные структурированные поля лога: ошибки
// и идентификатор пользователя, который проходит почти через каждую операцию.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to consume quota", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// UID возвращает slog.Attr с ключом "uid" и идентификатором пользователя
// (adapty profile id).
func UID(uid string) slog.Attr {
	return slog.String("uid", uid)
}
