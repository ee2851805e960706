package storage

import "errors"

// ErrUserNotFound возвращается, когда документ пользователя с указанным username не найден
var ErrUserNotFound = errors.New("user not found")

// ErrEmptyUsername возвращается при попытке сохранить пользователя без username
var ErrEmptyUsername = errors.New("empty username")
