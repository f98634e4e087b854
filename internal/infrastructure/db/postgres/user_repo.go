package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/accounts-api/internal/domain"
)

// pgUniqueViolation is SQLSTATE 23505.
const pgUniqueViolation = "23505"

// UserRepo is the postgres-backed user directory. Emails are matched exactly.
type UserRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

// ---------- helpers ----------

func (r *UserRepo) findOne(ctx context.Context, where string, arg any) (domain.User, bool, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` = $1 LIMIT 1;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// ---------- auth.UserDirectory ----------

func (r *UserRepo) FindByID(ctx context.Context, id string) (domain.User, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, false, nil
	}
	// ids are uuid columns; anything else can never match
	if _, err := uuid.Parse(id); err != nil {
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
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Name == "" {
		d.Name = domain.EmailLocalPart(d.Email)
	}
	if d.Role == "" {
		d.Role = domain.RoleUser
	}
	now := r.now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}

	q := `
INSERT INTO users (id, email, password_hash, name, role,
	email_verification_token, email_verification_token_expires_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING ` + userColumns + `;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		d.ID, d.Email, d.PasswordHash, d.Name, string(d.Role),
		d.EmailVerificationToken, d.EmailVerificationTokenExpiresAt, d.CreatedAt, d.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrUserAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// Update merges the patch in a single statement; COALESCE keeps columns whose
// parameter is NULL, and $7 clears both token columns.
func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch) (domain.User, error) {
	var role *string
	if p.Role != nil {
		s := string(*p.Role)
		role = &s
	}

	q := `
UPDATE users SET
	name = COALESCE($2, name),
	role = COALESCE($3, role),
	email_verified_at = COALESCE($4, email_verified_at),
	email_verification_token = CASE WHEN $7 THEN NULL ELSE COALESCE($5, email_verification_token) END,
	email_verification_token_expires_at = CASE WHEN $7 THEN NULL ELSE COALESCE($6, email_verification_token_expires_at) END,
	updated_at = $8
WHERE id = $1
RETURNING ` + userColumns + `;`

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		id, p.Name, role, p.EmailVerifiedAt,
		p.EmailVerificationToken, p.EmailVerificationTokenExpiresAt,
		p.ClearEmailVerificationToken, r.now().UTC(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrUserAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// Ping backs the health endpoint.
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
