package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/phonebook/internal/errs"
)

// Do runs an authenticated operation with the refresh-then-retry policy:
// on ErrUnauthorized the session is refreshed exactly once (overlapping
// failures share the in-flight refresh) and the operation retried exactly
// once; its second outcome is final. Any refresh failure forces a local
// logout and surfaces as ErrSessionExpired. Non-authorization failures are
// returned as-is, never retried.
func Do[T any](ctx context.Context, s *Store, op func(context.Context) (T, error)) (T, error) {
	res, err := op(ctx)
	if err == nil || !errors.Is(err, errs.ErrUnauthorized) {
		return res, err
	}

	if refreshErr := s.Refresh(ctx); refreshErr != nil {
		s.ForceLogout()
		var zero T
		return zero, fmt.Errorf("%w: %v", errs.ErrSessionExpired, refreshErr)
	}

	res, err = op(ctx)
	if err != nil && errors.Is(err, errs.ErrUnauthorized) {
		// The fresh token was rejected too; the session is beyond repair.
		s.ForceLogout()
		var zero T
		return zero, fmt.Errorf("%w: %v", errs.ErrSessionExpired, err)
	}
	return res, err
}

// DoVoid is Do for operations without a result.
func DoVoid(ctx context.Context, s *Store, op func(context.Context) error) error {
	_, err := Do(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
