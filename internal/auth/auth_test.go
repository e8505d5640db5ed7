package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef-test")

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(Config{
		Secret:     testSecret,
		Issuer:     "academic-records-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	return m
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("not-a-hash", "s3cret-pass") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}

func TestNewTokenManager_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"short secret", Config{Secret: []byte("short"), AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"zero access ttl", Config{Secret: testSecret, RefreshTTL: time.Hour}},
		{"zero refresh ttl", Config{Secret: testSecret, AccessTTL: time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenManager(tt.cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := newTestManager(t)
	user := &models.User{ID: 42, Email: "t@school.test", Role: models.RoleTeacher}

	pair, err := m.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if pair.TokenType != "Bearer" || pair.Role != models.RoleTeacher {
		t.Errorf("unexpected pair metadata: %+v", pair)
	}
	if !pair.RefreshExpiresAt.After(pair.ExpiresAt) {
		t.Error("refresh token should outlive access token")
	}

	claims, err := m.Parse(pair.AccessToken, AccessToken)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	id, _ := claims.UserID()
	if id != 42 || claims.Role != models.RoleTeacher || claims.Email != "t@school.test" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token id missing")
	}

	if _, err := m.Parse(pair.RefreshToken, RefreshToken); err != nil {
		t.Errorf("Parse(refresh) error = %v", err)
	}
}

func TestTokenManager_ParseFailures(t *testing.T) {
	m := newTestManager(t)
	user := &models.User{ID: 1, Email: "a@school.test", Role: models.RoleAdmin}
	pair, _ := m.Issue(user)

	other, _ := NewTokenManager(Config{
		Secret:     []byte("another-secret-that-is-long-enough!!"),
		Issuer:     "academic-records-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	forged, _ := other.Issue(user)

	// flip one character of the signature
	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if strings.HasSuffix(pair.AccessToken, "xx") {
		tampered = pair.AccessToken[:len(pair.AccessToken)-2] + "yy"
	}

	tests := []struct {
		name  string
		token string
		typ   TokenType
		want  error
	}{
		{"tampered signature", tampered, AccessToken, ErrTokenInvalid},
		{"foreign secret", forged.AccessToken, AccessToken, ErrTokenInvalid},
		{"garbage", "not.a.token", AccessToken, ErrTokenInvalid},
		{"refresh used as access", pair.RefreshToken, AccessToken, ErrTokenWrongType},
		{"access used as refresh", pair.AccessToken, RefreshToken, ErrTokenWrongType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token, tt.typ)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestManager(t)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	pair, err := m.Issue(&models.User{ID: 3, Email: "s@school.test", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(pair.AccessToken, AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Parse() error = %v, want ErrTokenExpired", err)
	}
	if _, err := m.Parse(pair.RefreshToken, RefreshToken); err != nil {
		t.Errorf("refresh token should still be valid, got %v", err)
	}
}

func TestPrincipal_Require(t *testing.T) {
	var nobody *Principal
	teacher := &Principal{UserID: 2, Role: models.RoleTeacher}
	admin := &Principal{UserID: 1, Role: models.RoleAdmin}

	tests := []struct {
		name  string
		p     *Principal
		roles []models.UserRole
		want  error
	}{
		{"nil principal", nobody, []models.UserRole{models.RoleStudent}, ErrNotAuthenticated},
		{"matching role", teacher, []models.UserRole{models.RoleTeacher}, nil},
		{"one of several", teacher, []models.UserRole{models.RoleAdmin, models.RoleTeacher}, nil},
		{"wrong role", teacher, []models.UserRole{models.RoleStudent}, ErrForbidden},
		{"admin passes any gate", admin, []models.UserRole{models.RoleStudent}, nil},
		{"student on teacher gate", &Principal{UserID: 3, Role: models.RoleStudent}, []models.UserRole{models.RoleTeacher}, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Require(tt.roles...)
			if tt.want == nil && err != nil {
				t.Errorf("Require() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Require() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewPrincipal(t *testing.T) {
	m := newTestManager(t)
	pair, _ := m.Issue(&models.User{ID: 9, Email: "x@school.test", Role: models.RoleStudent})
	claims, _ := m.Parse(pair.AccessToken, AccessToken)

	p, err := NewPrincipal(claims)
	if err != nil {
		t.Fatalf("NewPrincipal() error = %v", err)
	}
	if p.UserID != 9 || p.TokenID != claims.ID || p.ExpiresAt.IsZero() {
		t.Errorf("unexpected principal: %+v", p)
	}
	if !p.IsSelf(9) || p.IsSelf(10) {
		t.Error("IsSelf() mismatch")
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	_ = store.Revoke(ctx, "a", time.Now().Add(time.Minute))
	if revoked, _ := store.IsRevoked(ctx, "a"); !revoked {
		t.Error("expected token revoked")
	}
	if revoked, _ := store.IsRevoked(ctx, "b"); revoked {
		t.Error("unrelated token revoked")
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if revoked, _ := store.IsRevoked(ctx, "a"); revoked {
		t.Error("revocation should lapse after expiry")
	}
}
