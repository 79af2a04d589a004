package domain

import "errors"

var (
	// ErrEmptyAmounts означает, что в тексте не найдено ни одной суммы.
	ErrEmptyAmounts = errors.New("суммы не распознаны")
	// ErrInvalidRate означает, что курс не является положительным числом.
	ErrInvalidRate = errors.New("некорректный курс")
	// ErrIncompleteRates означает, что расчёт запрошен до ввода всех пяти курсов.
	ErrIncompleteRates = errors.New("введены не все курсы")
	// ErrCacheMiss означает, что ключа нет в кэше.
	ErrCacheMiss = errors.New("ключ не найден")
	// ErrStaleRevision означает, что в учёте уже лежит более поздняя версия сообщения.
	ErrStaleRevision = errors.New("устаревшая версия сообщения")
)
