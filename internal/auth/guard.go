package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
	"github.com/namgaylhamo24/quick-post-02240350/internal/token"
)

const (
	bearerPrefix = "Bearer "
	identityKey  = "identity"
)

// UserFinder looks users up by id
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Guard resolves an Authorization header to the user it belongs to
type Guard struct {
	signer *token.Signer
	users  UserFinder
}

func NewGuard(signer *token.Signer, users UserFinder) *Guard {
	return &Guard{signer: signer, users: users}
}

// Authenticate validates a "Bearer <token>" header. It has no side effects.
func (g *Guard) Authenticate(ctx context.Context, header string) (model.Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return model.Identity{}, apperr.ErrMissingCredential
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return model.Identity{}, apperr.ErrMissingCredential
	}

	// magic-link tokens are only redeemable through Verify
	claims, err := g.signer.Parse(token.Access, raw)
	if err != nil {
		return model.Identity{}, apperr.Wrap(apperr.ErrInvalidCredential, err)
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Identity{}, apperr.Wrap(apperr.ErrUnknownUser, err)
		}
		return model.Identity{}, fmt.Errorf("load user: %w", err)
	}

	return model.Identity{UserID: user.ID, Email: user.Email}, nil
}

// SetIdentity attaches id to the request context
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by the guard middleware
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}
