package services

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
)

func (e *testEnv) login(t *testing.T, user *models.User) *auth.TokenPair {
	t.Helper()
	pair, err := e.auth.Login(e.ctx, &LoginRequest{Email: user.Email, Password: testPassword})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return pair
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, nil, models.RoleTeacher)

	pair := env.login(t, teacher)
	if pair.Role != models.RoleTeacher || pair.TokenType != "Bearer" {
		t.Errorf("unexpected pair %+v", pair)
	}
	claims, err := env.tokens.Parse(pair.AccessToken, auth.AccessToken)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Role != models.RoleTeacher || claims.Email != teacher.Email {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, nil, models.RoleStudent)

	tests := []struct {
		name string
		req  *LoginRequest
		want ErrorKind
	}{
		{"wrong password", &LoginRequest{Email: student.Email, Password: "not-the-password"}, KindUnauthorized},
		{"unknown email", &LoginRequest{Email: "ghost@school.test", Password: testPassword}, KindUnauthorized},
		{"malformed email", &LoginRequest{Email: "ghost", Password: testPassword}, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(env.ctx, tt.req)
			assertKind(t, err, tt.want)
		})
	}

	_, errUnknown := env.auth.Login(env.ctx, tests[1].req)
	_, errWrong := env.auth.Login(env.ctx, tests[0].req)
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("unknown email and wrong password should fail alike: %q vs %q", errUnknown, errWrong)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, nil, models.RoleStudent)
	pair := env.login(t, student)

	principal, err := env.auth.Authenticate(env.ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if principal.UserID != student.ID || principal.Role != models.RoleStudent {
		t.Errorf("principal = %+v", principal)
	}

	_, err = env.auth.Authenticate(env.ctx, "")
	assertKind(t, err, KindUnauthorized)
	_, err = env.auth.Authenticate(env.ctx, "not.a.token")
	assertKind(t, err, KindUnauthorized)
	_, err = env.auth.Authenticate(env.ctx, pair.RefreshToken)
	assertKind(t, err, KindUnauthorized)

	me, err := env.auth.Me(env.ctx, principal)
	if err != nil || me.ID != student.ID {
		t.Errorf("Me() = %v, %v", me, err)
	}
}

func TestAuthService_ExpiredToken(t *testing.T) {
	env := newTestEnvWithTTL(t, time.Nanosecond)
	student := env.createUser(t, nil, models.RoleStudent)
	pair := env.login(t, student)

	time.Sleep(time.Millisecond)
	_, err := env.auth.Authenticate(env.ctx, pair.AccessToken)
	assertKind(t, err, KindUnauthorized)
}

func TestAuthService_DeletedUserToken(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, nil, models.RoleStudent)
	pair := env.login(t, student)

	if err := env.identity.Delete(env.ctx, env.admin, student.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err := env.auth.Authenticate(env.ctx, pair.AccessToken)
	assertKind(t, err, KindUnauthorized)
	_, err = env.auth.Refresh(env.ctx, pair.RefreshToken)
	assertKind(t, err, KindUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, nil, models.RoleTeacher)
	pair := env.login(t, teacher)

	if err := env.auth.Logout(env.ctx, pair.AccessToken, pair.RefreshToken, "", "garbage"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	_, err := env.auth.Authenticate(env.ctx, pair.AccessToken)
	assertKind(t, err, KindUnauthorized)
	_, err = env.auth.Refresh(env.ctx, pair.RefreshToken)
	assertKind(t, err, KindUnauthorized)

	fresh := env.login(t, teacher)
	if _, err := env.auth.Authenticate(env.ctx, fresh.AccessToken); err != nil {
		t.Errorf("new login should work after logout: %v", err)
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, nil, models.RoleAdmin)
	pair := env.login(t, admin)

	next, err := env.auth.Refresh(env.ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.AccessToken == pair.AccessToken || next.RefreshToken == pair.RefreshToken {
		t.Error("refresh should issue new tokens")
	}
	if _, err := env.auth.Authenticate(env.ctx, next.AccessToken); err != nil {
		t.Errorf("refreshed access token rejected: %v", err)
	}

	_, err = env.auth.Refresh(env.ctx, pair.RefreshToken)
	assertKind(t, err, KindUnauthorized)

	_, err = env.auth.Refresh(env.ctx, pair.AccessToken)
	assertKind(t, err, KindUnauthorized)
}

func TestAuthService_RoleFollowsStoredUser(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, nil, models.RoleStudent)
	pair := env.login(t, student)

	principal, err := env.auth.Authenticate(env.ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	_, err = env.report.Summary(env.ctx, principal)
	assertKind(t, err, KindForbidden)
}
