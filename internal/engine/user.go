package engine

import (
	"context"
	"fmt"
	"strings"

	"field-match/internal/domain/user"

	"github.com/google/uuid"
)

type RegisterUserInput struct {
	Role        user.Role
	DisplayName string
}

// RegisterUser adds a user to the registry that recipient and match-party
// validation runs against.
func (e *Engine) RegisterUser(ctx context.Context, in RegisterUserInput) (user.User, error) {
	_ = ctx

	if !in.Role.Valid() {
		return user.User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return user.User{}, fmt.Errorf("%w: empty display name", ErrValidation)
	}

	u := user.User{
		ID:          uuid.New(),
		Role:        in.Role,
		DisplayName: name,
		CreatedAt:   e.now(),
	}
	if !e.store.PutUser(u) {
		return user.User{}, fmt.Errorf("%w: user id collision", ErrValidation)
	}
	return u, nil
}

func (e *Engine) GetUser(ctx context.Context, id uuid.UUID) (user.User, error) {
	_ = ctx

	u, ok := e.store.GetUser(id)
	if !ok {
		return user.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, nil
}
