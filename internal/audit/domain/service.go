package domain

import (
	"context"
	"errors"
)

// Service records audit entries. Recording is best-effort at call sites;
// callers ignore the returned error once the primary operation committed.
type Service interface {
	Record(ctx context.Context, actor ActorType, actorID *string, action, targetType string, targetID *string, metadata map[string]any) error
}

var (
	ErrInvalidAction = errors.New("invalid_action")
)
