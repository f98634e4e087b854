package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/accounts-api/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	ctx    context.Context
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserDirectory struct {
	mu sync.Mutex

	byID map[string]domain.User

	findErr   error
	createErr error
	updateErr error

	creates int
	updates int
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{byID: map[string]domain.User{}}
}

func (f *fakeUserDirectory) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserDirectory) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserDirectory) FindByID(ctx context.Context, id string) (domain.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.User{}, false, f.findErr
	}
	u, ok := f.byID[id]
	return u, ok, nil
}

func (f *fakeUserDirectory) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.User{}, false, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (f *fakeUserDirectory) FindByVerificationToken(ctx context.Context, token string) (domain.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.User{}, false, f.findErr
	}
	for _, u := range f.byID {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == token {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (f *fakeUserDirectory) Create(ctx context.Context, d domain.UserDraft) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
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
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserDirectory) Update(ctx context.Context, id string, p domain.UserPatch) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	u = p.Apply(u, time.Now())
	f.byID[id] = u
	return u, nil
}

// fakeHasher stores "h:"+password so comparisons stay deterministic.
type fakeHasher struct {
	hashFn func(pw string) (string, error)

	hashCalls    int
	compareCalls int
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	h.hashCalls++
	if h.hashFn != nil {
		return h.hashFn(pw)
	}
	return "h:" + pw, nil
}

func (h *fakeHasher) Compare(hash, pw string) error {
	h.compareCalls++
	if hash != "h:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type fakeSigner struct {
	signErr error

	signCalls int
	lastSub   string
	lastEmail string
}

func (s *fakeSigner) Sign(subject, email string) (string, error) {
	s.signCalls++
	s.lastSub, s.lastEmail = subject, email
	if s.signErr != nil {
		return "", s.signErr
	}
	return "tok:" + subject, nil
}

func (s *fakeSigner) Verify(token string) (TokenClaims, error) {
	sub, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return TokenClaims{}, errors.New("bad token")
	}
	return TokenClaims{Subject: sub}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []EmailMessage
}

func (m *fakeMailer) SendEmail(ctx context.Context, msg EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *fakeMailer) last(t *testing.T) EmailMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatalf("expected an email to be sent")
	}
	return m.sent[len(m.sent)-1]
}

/*
Service constructor for tests
*/

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	users  *fakeUserDirectory
	hasher *fakeHasher
	signer *fakeSigner
	mailer *fakeMailer
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T, requireVerification bool) (*Service, testDeps) {
	t.Helper()

	d := testDeps{
		users:  newFakeUserDirectory(),
		hasher: &fakeHasher{},
		signer: &fakeSigner{},
		mailer: &fakeMailer{},
		audits: &[]auditEntry{},
	}
	var mu sync.Mutex

	svc := NewService(d.users, d.hasher, d.signer, d.mailer, Config{
		RequireEmailVerification: requireVerification,
		BackendURL:               "http://api.test/",
	}).
		WithClock(func() time.Time { return fixedNow }).
		WithAudit(func(ctx context.Context, action string, fields map[string]string) {
			mu.Lock()
			defer mu.Unlock()
			*d.audits = append(*d.audits, auditEntry{ctx: ctx, action: action, fields: fields})
		})

	return svc, d
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func seedUser(d testDeps, id, email, password string, verified bool) domain.User {
	u := domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: strPtr("h:" + password),
		Name:         domain.EmailLocalPart(email),
		Role:         domain.RoleUser,
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
	if verified {
		u.EmailVerifiedAt = timePtr(fixedNow.Add(-time.Hour))
	}
	d.users.put(u)
	return u
}
