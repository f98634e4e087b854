package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/accounts-api/internal/domain"
)

// UserRepo is an in-process user directory for tests and local development.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
	byToken map[string]string // verification token -> userID
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (domain.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	return u, ok, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *UserRepo) FindByVerificationToken(ctx context.Context, token string) (domain.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return domain.User{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *UserRepo) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	if strings.TrimSpace(d.Email) == "" {
		return domain.User{}, domain.ErrEmailRequired()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[d.Email]; exists {
		return domain.User{}, domain.ErrUserAlreadyExists()
	}

	now := r.now()
	u := domain.User{
		ID:                              d.ID,
		Email:                           d.Email,
		PasswordHash:                    d.PasswordHash,
		Name:                            d.Name,
		Role:                            d.Role,
		EmailVerificationToken:          d.EmailVerificationToken,
		EmailVerificationTokenExpiresAt: d.EmailVerificationTokenExpiresAt,
		CreatedAt:                       d.CreatedAt,
		UpdatedAt:                       d.UpdatedAt,
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Name == "" {
		u.Name = domain.EmailLocalPart(u.Email)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	if u.EmailVerificationToken != nil {
		r.byToken[*u.EmailVerificationToken] = u.ID
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}

	if u.EmailVerificationToken != nil {
		delete(r.byToken, *u.EmailVerificationToken)
	}
	u = p.Apply(u, r.now())
	if u.EmailVerificationToken != nil {
		r.byToken[*u.EmailVerificationToken] = u.ID
	}

	r.byID[id] = u
	return u, nil
}

// Ping always succeeds; it lets the memory driver satisfy the health check.
func (r *UserRepo) Ping(ctx context.Context) error { return nil }

// Len reports how many users are stored.
func (r *UserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
