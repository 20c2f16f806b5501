// internal/service/auth/auth.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"rbadmin/internal/domain/auth"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
	"rbadmin/internal/pkg/jwt"
	"rbadmin/internal/pkg/session"
)

const DefaultRedirect = "/admin/users/clients"

// LoginLimiter is satisfied by session.RateLimiter.
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// AuditRecorder is satisfied by postgres.AuditRepository.
type AuditRecorder interface {
	Record(ctx context.Context, ev *auth.AuditEvent) error
}

type Options struct {
	Limiter         LoginLimiter
	Audit           AuditRecorder
	DefaultRedirect string
}

type AuthService struct {
	api             *apiclient.Client
	decoder         *jwt.Decoder
	limiter         LoginLimiter
	audit           AuditRecorder
	defaultRedirect string
	logger          *zap.Logger
}

func NewAuthService(api *apiclient.Client, decoder *jwt.Decoder, opts Options, logger *zap.Logger) *AuthService {
	if decoder == nil {
		decoder = jwt.NewDecoder(nil)
	}
	redirect := opts.DefaultRedirect
	if redirect == "" {
		redirect = DefaultRedirect
	}
	return &AuthService{
		api:             api,
		decoder:         decoder,
		limiter:         opts.Limiter,
		audit:           opts.Audit,
		defaultRedirect: redirect,
		logger:          logger,
	}
}

// ========== Login ==========

// Login signs in against the backend: auth/login for the token, then
// auth/me for the profile. The returned session carries what the identity
// cookies need.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResult, *session.Session, error) {
	req.Normalize()

	if s.limiter != nil {
		allowed, remaining, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, req.Email)
		if err != nil {
			return nil, nil, fmt.Errorf("rate limiter error: %w", err)
		}
		if !allowed {
			s.record(ctx, req, auth.EventRateLimited, nil, "limit reached")
			return nil, nil, xerrors.Wrap(xerrors.ErrRateLimited, "too many login attempts, please try again in 15 minutes")
		}
		s.logger.Debug("login attempt", zap.String("email", req.Email), zap.Int64("remaining", remaining))
	}

	var reply loginReply
	err := s.api.DoInto(ctx, apiclient.Request{
		Path:   "auth/login",
		Method: http.MethodPost,
		Payload: auth.Credentials{
			Email:    req.Email,
			Password: req.Password,
		},
		WholeBody: true,
	}, &reply)
	if err != nil {
		s.record(ctx, req, auth.EventSignInFailed, nil, err.Error())
		return nil, nil, err
	}
	token := reply.token()
	if token == "" {
		s.record(ctx, req, auth.EventSignInFailed, nil, "no token in reply")
		return nil, nil, xerrors.Wrap(xerrors.ErrUpstream, "login reply has no token")
	}

	user := map[string]any{}
	err = s.api.DoInto(ctx, apiclient.Request{
		Path:       "auth/me",
		Credential: apiclient.Token(token),
	}, &user)
	if err != nil {
		s.record(ctx, req, auth.EventSignInFailed, nil, "profile: "+err.Error())
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}

	sess, err := s.sessionFor(token, user)
	if err != nil {
		s.record(ctx, req, auth.EventSignInFailed, nil, err.Error())
		return nil, nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, req.Email); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}
	s.record(ctx, req, auth.EventSignIn, sess, "")

	s.logger.Info("console sign-in",
		zap.String("email", sess.Email),
		zap.String("role", string(sess.Role)),
	)

	return &auth.LoginResult{
		Token:    token,
		User:     user,
		Redirect: s.SafeRedirect(req.Redirect),
	}, sess, nil
}

// loginReply reads data.token, falling back to a top-level token.
type loginReply struct {
	Token string          `json:"token"`
	Data  json.RawMessage `json:"data"`
}

func (r loginReply) token() string {
	var data struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(r.Data, &data) == nil {
		if t := strings.TrimSpace(data.Token); t != "" {
			return t
		}
	}
	return strings.TrimSpace(r.Token)
}

// sessionFor merges the profile with whatever the token's claims say. The
// profile wins; claims fill the gaps.
func (s *AuthService) sessionFor(token string, user map[string]any) (*session.Session, error) {
	sess := &session.Session{
		Email: str(user["email"]),
		Role:  session.Role(strings.ToLower(str(user["role"]))),
		Name:  displayName(user),
	}

	claims, err := s.decoder.Decode(token)
	switch {
	case err == nil:
		sess.Exp = claims.ExpiresUnix()
		sess.Sub = claims.SubjectOr(user["id"])
		if sess.Email == "" {
			sess.Email = claims.Email
		}
		if sess.Role == "" {
			sess.Role = session.Role(claims.PrimaryRole())
		}
		if sess.Name == "" {
			sess.Name = claims.Name
		}
	case errors.Is(err, jwt.ErrNotAJWT) && !s.decoder.Verifies():
		s.logger.Debug("backend token is opaque, using profile only")
		sess.Sub = (&jwt.Claims{}).SubjectOr(user["id"])
	default:
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "backend token rejected")
	}

	if sess.Role == "" {
		sess.Role = session.RoleClient
	}
	return sess, nil
}

// SafeRedirect keeps redirect only when it is a local absolute path.
func (s *AuthService) SafeRedirect(redirect string) string {
	redirect = strings.TrimSpace(redirect)
	if redirect == "" || !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") || strings.Contains(redirect, "\\") {
		return s.defaultRedirect
	}
	u, err := url.Parse(redirect)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return s.defaultRedirect
	}
	return redirect
}

// ========== Logout ==========

// Logout records the sign-out. Cookies and storage are the handler's job.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session, ip, userAgent, requestID string) {
	req := &auth.LoginRequest{IPAddress: ip, UserAgent: userAgent, RequestID: requestID}
	if sess != nil {
		req.Email = sess.Email
	}
	s.record(ctx, req, auth.EventSignOut, sess, "")
}

// ========== Profile ==========

// Me returns the backend's view of the signed-in user.
func (s *AuthService) Me(ctx context.Context, caller apiclient.Caller) (map[string]any, error) {
	user := map[string]any{}
	if err := s.api.CallInto(ctx, caller, http.MethodGet, "auth/me", nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) record(ctx context.Context, req *auth.LoginRequest, event auth.EventType, sess *session.Session, reason string) {
	if s.audit == nil {
		return
	}
	ev := &auth.AuditEvent{
		Event:     event,
		Email:     strings.ToLower(req.Email),
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Reason:    reason,
		RequestID: req.RequestID,
	}
	if sess != nil {
		ev.Subject = sess.Sub
		ev.Role = string(sess.Role)
		if ev.Email == "" {
			ev.Email = strings.ToLower(sess.Email)
		}
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		s.logger.Warn("failed to record audit event", zap.String("event", string(event)), zap.Error(err))
	}
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func displayName(user map[string]any) string {
	if n := str(user["name"]); n != "" {
		return n
	}
	return strings.TrimSpace(str(user["firstName"]) + " " + str(user["lastName"]))
}
