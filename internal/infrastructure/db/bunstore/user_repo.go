package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/baechuer/accounts-api/internal/domain"
)

// UserRepo is the bun-backed user directory used with DB_DRIVER=sqlite.
type UserRepo struct {
	db  bun.IDB
	now func() time.Time
}

func NewUserRepo(db bun.IDB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

// sqlite drivers behind the shim share no typed error, only this message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *UserRepo) findOne(ctx context.Context, column, value string) (domain.User, bool, error) {
	m := new(userModel)
	err := r.db.NewSelect().
		Model(m).
		Where("? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, domain.ErrDBUnavailable(err)
	}
	return m.toDomain(), true, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (domain.User, bool, error) {
	if id == "" {
		return domain.User{}, false, nil
	}
	return r.findOne(ctx, "id", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	if email == "" {
		return domain.User{}, false, nil
	}
	return r.findOne(ctx, "email", email)
}

func (r *UserRepo) FindByVerificationToken(ctx context.Context, token string) (domain.User, bool, error) {
	if token == "" {
		return domain.User{}, false, nil
	}
	return r.findOne(ctx, "email_verification_token", token)
}

func (r *UserRepo) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	if strings.TrimSpace(d.Email) == "" {
		return domain.User{}, domain.ErrEmailRequired()
	}

	now := r.now().UTC()
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

	m := fromDomain(u)
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrUserAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return m.toDomain(), nil
}

// Update reads and writes inside one transaction so concurrent patches do not interleave.
func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch) (domain.User, error) {
	var out domain.User
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := new(userModel)
		if err := tx.NewSelect().Model(m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrUserNotFound()
			}
			return domain.ErrDBUnavailable(err)
		}

		updated := p.Apply(m.toDomain(), r.now().UTC())
		if _, err := tx.NewUpdate().Model(fromDomain(updated)).WherePK().Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrUserAlreadyExists()
			}
			return domain.ErrDBUnavailable(err)
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return out, nil
}

// Ping backs the health endpoint.
func (r *UserRepo) Ping(ctx context.Context) error {
	if db, ok := r.db.(*bun.DB); ok {
		return db.PingContext(ctx)
	}
	return nil
}
