package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/usecase/goals"
)

// Sessions hands out the serialized goals engine of an identity.
type Sessions interface {
	With(ctx context.Context, identity string, fn func(*goals.Engine) error) error
}

// Bridge maps identity provider claims onto the gamification profile.
type Bridge struct {
	sessions Sessions
	logger   *zap.Logger
}

func New(sessions Sessions, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		sessions: sessions,
		logger:   logger,
	}
}

// CurrentUser returns the profile of the authenticated identity after merging
// the latest claim values into it. Unauthenticated callers get an empty profile.
func (b *Bridge) CurrentUser(ctx context.Context, claims domain.Claims) (domain.User, error) {
	identity := claims.Identity()
	if !claims.Authenticated || identity == "" {
		return domain.User{}, nil
	}

	var user domain.User
	err := b.sessions.With(ctx, identity, func(engine *goals.Engine) error {
		if engine.Namespace() != identity {
			engine.SwitchNamespace(ctx, identity)
		}

		current := engine.CurrentUser()
		merged, changed := Merge(current, claims)
		user = merged
		if !changed {
			return nil
		}
		b.logger.Debug("profile updated from claims", zap.String("identity", identity))
		return engine.UpdateUser(ctx, merged)
	})
	return user, err
}

// Claims returns the raw claim values for diagnostics.
func (b *Bridge) Claims(_ context.Context, claims domain.Claims) map[string]string {
	out := make(map[string]string, len(claims.Raw)+1)
	for k, v := range claims.Raw {
		out[k] = v
	}
	if claims.Authenticated {
		out["identity"] = claims.Identity()
	}
	return out
}

// Merge copies non-empty claim values onto user. A username the user chose
// is kept; only an empty or placeholder name is replaced.
func Merge(user domain.User, claims domain.Claims) (domain.User, bool) {
	changed := false
	if id := claims.Identity(); id != "" && id != user.ObjectID {
		user.ObjectID = id
		changed = true
	}
	if email := claims.ContactEmail(); email != "" && email != user.Email {
		user.Email = email
		changed = true
	}
	if name := claims.DisplayName(); name != "" && !user.HasCustomName() && name != user.Username {
		user.Username = name
		changed = true
	}
	return user, changed
}
