package store

import (
	"context"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

var (
	// ErrTransient marks failures worth retrying: network, timeouts, 5xx, rate limits.
	ErrTransient = crerr.New("store transient error")
	// ErrPermanent marks schema, auth and malformed-query failures.
	ErrPermanent = crerr.New("store permanent error")
)

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrTransient)
}

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrPermanent)
}

func IsTransient(err error) bool {
	return err != nil && crerr.Is(err, ErrTransient)
}

func IsPermanent(err error) bool {
	return err != nil && crerr.Is(err, ErrPermanent)
}

// classifySQL marks a database/sql error by its SQLSTATE class.
func classifySQL(err error) error {
	if err == nil || IsTransient(err) || IsPermanent(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient(err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		// connection exception, insufficient resources, operator intervention, transaction rollback
		case "08", "53", "57", "40":
			return Transient(err)
		}
		// 42 syntax/access rule, 28 invalid authorization, data and integrity errors
		return Permanent(err)
	}

	// network errors, pool exhaustion and pgbouncer result-format mismatches
	return Transient(err)
}

func classifyStatus(status int, err error) error {
	switch {
	case status >= 500, status == 429, status == 408:
		return Transient(err)
	case status >= 400:
		return Permanent(err)
	default:
		return Transient(err)
	}
}
