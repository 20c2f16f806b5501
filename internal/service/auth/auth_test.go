package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rbadmin/internal/domain/auth"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
	"rbadmin/internal/pkg/jwt"
	"rbadmin/internal/pkg/session"
)

type fakeLimiter struct {
	allow  bool
	checks int
	resets int
}

func (f *fakeLimiter) CheckLoginAttempt(context.Context, string, string) (bool, int64, error) {
	f.checks++
	return f.allow, 4, nil
}

func (f *fakeLimiter) ResetLoginAttempts(context.Context, string, string) error {
	f.resets++
	return nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []auth.AuditEvent
}

func (f *fakeAudit) Record(_ context.Context, ev *auth.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeAudit) kinds() []auth.EventType {
	var out []auth.EventType
	for _, ev := range f.events {
		out = append(out, ev.Event)
	}
	return out
}

func signedToken(t *testing.T, claims *jwt.Claims) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func backend(t *testing.T, token string, loginStatus int) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &body)
			if loginStatus != http.StatusOK || body["email"] != "ana@example.com" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"success":false,"message":"Invalid credentials"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"token": token}})
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":17,"email":"ana@example.com","role":"Admin","firstName":"Ana","lastName":"Ruiz"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api"}, zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := signedToken(t, &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "user-17",
		ExpiresAt: gojwt.NewNumericDate(exp),
	}})

	limiter := &fakeLimiter{allow: true}
	audit := &fakeAudit{}
	svc := NewAuthService(backend(t, token, http.StatusOK), nil, Options{Limiter: limiter, Audit: audit}, zap.NewNop())

	res, sess, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email:     "  ana@example.com ",
		Password:  "pw",
		Redirect:  "/admin/courses?page=2",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)

	assert.Equal(t, token, res.Token)
	assert.Equal(t, "/admin/courses?page=2", res.Redirect)
	assert.Equal(t, "ana@example.com", res.User["email"])

	assert.Equal(t, "user-17", sess.Sub)
	assert.Equal(t, session.RoleAdmin, sess.Role)
	assert.Equal(t, exp.Unix(), sess.Exp)
	assert.Equal(t, "Ana Ruiz", sess.Name)

	assert.Equal(t, 1, limiter.checks)
	assert.Equal(t, 1, limiter.resets)
	assert.Equal(t, []auth.EventType{auth.EventSignIn}, audit.kinds())
	assert.Equal(t, "10.0.0.1", audit.events[0].IPAddress)
}

func TestLogin_OpaqueTokenUsesProfile(t *testing.T) {
	svc := NewAuthService(backend(t, "42|plain", http.StatusOK), nil, Options{}, zap.NewNop())

	res, sess, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "ana@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, DefaultRedirect, res.Redirect)
	assert.Equal(t, "17", sess.Sub)
	assert.Zero(t, sess.Exp)
	assert.Equal(t, session.RoleAdmin, sess.Role)
}

func TestLogin_BackendRejects(t *testing.T) {
	audit := &fakeAudit{}
	svc := NewAuthService(backend(t, "t", http.StatusUnauthorized), nil, Options{Audit: audit}, zap.NewNop())

	_, _, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "ana@example.com", Password: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, []auth.EventType{auth.EventSignInFailed}, audit.kinds())
}

func TestLogin_RateLimited(t *testing.T) {
	audit := &fakeAudit{}
	svc := NewAuthService(backend(t, "t", http.StatusOK), nil, Options{Limiter: &fakeLimiter{allow: false}, Audit: audit}, zap.NewNop())

	_, _, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "ana@example.com", Password: "pw"})
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
	assert.Equal(t, []auth.EventType{auth.EventRateLimited}, audit.kinds())
}

func TestLogin_VerifyingDecoderRejectsForeignToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := signedToken(t, &jwt.Claims{Role: "admin"})

	svc := NewAuthService(backend(t, token, http.StatusOK), jwt.NewDecoder(&key.PublicKey), Options{}, zap.NewNop())
	_, _, err = svc.Login(context.Background(), &auth.LoginRequest{Email: "ana@example.com", Password: "pw"})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestSafeRedirect(t *testing.T) {
	svc := NewAuthService(nil, nil, Options{DefaultRedirect: "/admin"}, zap.NewNop())

	tests := map[string]string{
		"":                      "/admin",
		"/admin/courses":        "/admin/courses",
		"/admin/users?type=x":   "/admin/users?type=x",
		"https://evil.example":  "/admin",
		"//evil.example/path":   "/admin",
		"/\\evil.example":       "/admin",
		"admin/relative":        "/admin",
		"  /admin/settings  ":   "/admin/settings",
	}
	for in, want := range tests {
		assert.Equal(t, want, svc.SafeRedirect(in), in)
	}
}

func TestLogout_Records(t *testing.T) {
	audit := &fakeAudit{}
	svc := NewAuthService(nil, nil, Options{Audit: audit}, zap.NewNop())

	svc.Logout(context.Background(), &session.Session{Sub: "17", Email: "Ana@Example.com", Role: session.RoleAdmin}, "10.0.0.1", "ua", "rid")
	require.Len(t, audit.events, 1)
	assert.Equal(t, auth.EventSignOut, audit.events[0].Event)
	assert.Equal(t, "ana@example.com", audit.events[0].Email)
	assert.Equal(t, "17", audit.events[0].Subject)
}

func TestLoginReply_TokenLocations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"data token", `{"success":true,"data":{"token":"d"}}`, "d"},
		{"top level next to data", `{"success":true,"token":"top","data":{"user":{"id":1}}}`, "top"},
		{"data wins", `{"token":"top","data":{"token":"d"}}`, "d"},
		{"data not an object", `{"token":"top","data":[1,2]}`, "top"},
		{"none", `{"success":true,"data":{}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r loginReply
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, tt.want, r.token())
		})
	}
}

func TestLogin_TopLevelTokenBesideData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = io.WriteString(w, `{"success":true,"token":"42|plain","data":{"user":{"id":3}}}`)
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer 42|plain" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":3,"email":"eva@example.com","role":"admin"}}`)
		}
	}))
	t.Cleanup(srv.Close)

	api := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api"}, zap.NewNop())
	res, sess, err := NewAuthService(api, nil, Options{}, zap.NewNop()).Login(context.Background(),
		&auth.LoginRequest{Email: "eva@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "42|plain", res.Token)
	assert.Equal(t, "3", sess.Sub)
}
