package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Классы ошибок удалённого API. Проверяются через errors.Is.
var (
	// ErrTransient временная ошибка: сеть, таймаут, 5xx, 429. Повтор допустим позже.
	ErrTransient = errors.New("transient remote failure")
	// ErrConflict запись с таким id уже существует (нарушение уникальности).
	ErrConflict = errors.New("record already exists")
	// ErrNotFound запись отсутствует на сервере.
	ErrNotFound = errors.New("record not found on remote")
	// ErrPermanent запрос отклонён и не пройдёт при повторе (4xx, кроме 404/409/429).
	ErrPermanent = errors.New("permanent remote failure")
)

// RemoteError wraps a remote failure with the operation and HTTP status.
type RemoteError struct {
	Err     error // one of the error classes above
	Cause   error // transport error, if any
	Op      string
	Message string
	Status  int
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Err, e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Retryable reports whether err is worth retrying on a later flush or pull.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify maps an HTTP status to an error class
func classify(status int) error {
	switch {
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests, status == http.StatusRequestTimeout, status >= 500:
		return ErrTransient
	default:
		return ErrPermanent
	}
}
