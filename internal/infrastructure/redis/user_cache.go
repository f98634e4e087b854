package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/domain"
)

const DefaultUserCacheTTL = 5 * time.Minute

// UserCacheKeyPrefix namespaces cached users: user:id:<uuid>.
const UserCacheKeyPrefix = "user:id:"

// CachedUserDirectory decorates an auth.UserDirectory with a Redis read-through
// cache for FindByID.
// - Read path: Redis -> inner -> Redis set
// - Write path: inner -> Redis delete
// Redis failures are logged at debug and never fail the call.
type CachedUserDirectory struct {
	inner   auth.UserDirectory
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
	lg      zerolog.Logger
}

func NewCachedUserDirectory(inner auth.UserDirectory, client *Client, ttl time.Duration, lg zerolog.Logger) *CachedUserDirectory {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	return &CachedUserDirectory{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: UserCacheKeyPrefix,
		lg:      lg,
	}
}

func (c *CachedUserDirectory) key(id string) string {
	return c.keyPref + id
}

// cachedUser is the subset of a user the FindByID callers read. Credential
// material (password hash, verification token) stays in the directory.
type cachedUser struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toCached(u domain.User) cachedUser {
	return cachedUser{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            string(u.Role),
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (cu cachedUser) toDomain() domain.User {
	return domain.User{
		ID:              cu.ID,
		Email:           cu.Email,
		Name:            cu.Name,
		Role:            domain.Role(cu.Role),
		EmailVerifiedAt: cu.EmailVerifiedAt,
		CreatedAt:       cu.CreatedAt,
		UpdatedAt:       cu.UpdatedAt,
	}
}

func (c *CachedUserDirectory) FindByID(ctx context.Context, id string) (domain.User, bool, error) {
	// 1) Try Redis
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
		switch {
		case err == nil:
			var cu cachedUser
			if jerr := json.Unmarshal(raw, &cu); jerr == nil {
				return cu.toDomain(), true, nil
			}
			// corrupt entry -> fall back to inner
		case err != goredis.Nil:
			c.lg.Debug().Err(err).Str("user_id", id).Msg("user cache read failed")
		}
	}

	// 2) Source of truth
	u, found, err := c.inner.FindByID(ctx, id)
	if err != nil || !found {
		return u, found, err
	}

	// 3) Best-effort fill
	if c.rdb != nil {
		if raw, jerr := json.Marshal(toCached(u)); jerr == nil {
			if serr := c.rdb.Set(ctx, c.key(id), raw, c.ttl).Err(); serr != nil {
				c.lg.Debug().Err(serr).Str("user_id", id).Msg("user cache fill failed")
			}
		}
	}
	return u, true, nil
}

func (c *CachedUserDirectory) Update(ctx context.Context, id string, p domain.UserPatch) (domain.User, error) {
	u, err := c.inner.Update(ctx, id, p)
	if err != nil {
		return u, err
	}
	c.invalidate(ctx, id)
	return u, nil
}

func (c *CachedUserDirectory) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(id)).Err(); err != nil {
		c.lg.Debug().Err(err).Str("user_id", id).Msg("user cache invalidate failed")
	}
}

/*
Below: delegate the remaining auth.UserDirectory methods to inner.
*/

func (c *CachedUserDirectory) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return c.inner.FindByEmail(ctx, email)
}

func (c *CachedUserDirectory) FindByVerificationToken(ctx context.Context, token string) (domain.User, bool, error) {
	return c.inner.FindByVerificationToken(ctx, token)
}

func (c *CachedUserDirectory) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	return c.inner.Create(ctx, d)
}
