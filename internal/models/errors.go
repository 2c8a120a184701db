package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - запись с указанным идентификатором отсутствует
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument - не передан обязательный аргумент
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized - переход не входит в множество разрешенных
	ErrUnauthorized = errors.New("transition not allowed")
	// ErrCatalogIncomplete - в справочнике нет записи, на которую опирается жизненный цикл
	ErrCatalogIncomplete = errors.New("catalog incomplete")
)

// StoreError - сбой чтения или записи в хранилище
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
