// Package services contains the server-side business logic: accounts and
// sessions, posts with comments and reports, likes, the aggregated feed and
// media uploads. Services own validation and error classification; storage
// goes through repomanager.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/communityfeed/internal/common"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/communityfeed/internal/server/services")

// SessionManager issues and verifies session credentials.
type SessionManager interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// PasswordHasher produces and checks one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// isDomainError reports whether err is one of the classified errors callers
// act on, as opposed to a store or infrastructure failure.
func isDomainError(err error) bool {
	return errors.Is(err, common.ErrorNotFound) ||
		errors.Is(err, common.ErrorAlreadyExists) ||
		errors.Is(err, common.ErrorValidation) ||
		common.IsAuthError(err)
}

// wrap adds context to unexpected errors and passes domain errors through
// untouched so their messages stay client-presentable.
func wrap(err error, msg string) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !isDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// nonEmpty maps a blank optional string to nil.
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}
