// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"rbadmin/internal/domain/auth"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
	"rbadmin/internal/pkg/response"
	"rbadmin/internal/pkg/session"
	"rbadmin/internal/pkg/tokenstore"
	authUsecase "rbadmin/internal/service/auth"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	store       *tokenstore.Store
	resolver    *session.Resolver
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, store *tokenstore.Store, resolver *session.Resolver, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
		resolver:    resolver,
		logger:      logger,
	}
}

// ========== Pages ==========

// LoginPage renders the sign-in form, or skips it when already signed in.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	redirect := c.Query("redirect")
	if _, ok := h.resolver.GetSession(c.Request); ok {
		c.Redirect(http.StatusSeeOther, h.authService.SafeRedirect(redirect))
		return
	}
	h.renderLogin(c, http.StatusOK, "", redirect, "")
}

// Forbidden renders the 403 page the guards redirect to.
func (h *AuthHandler) Forbidden(c *gin.Context) {
	c.Render(http.StatusForbidden, render.HTML{
		Template: pages,
		Name:     "forbidden",
		Data:     forbiddenPage{Home: h.authService.SafeRedirect("")},
	})
}

// ========== Login ==========

// Login accepts the form post from LoginPage or a JSON body from scripts.
func (h *AuthHandler) Login(c *gin.Context) {
	asJSON := c.ContentType() == binding.MIMEJSON

	var req auth.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		if asJSON {
			response.ValidationError(c, "invalid request", err)
			return
		}
		h.renderLogin(c, http.StatusBadRequest, req.Email, req.Redirect, "Introduce tu correo y contraseña")
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	req.RequestID = middleware.GetRequestID(c)

	result, sess, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		if asJSON {
			response.FromError(c, err, "login failed")
			return
		}
		h.renderLogin(c, statusFor(err), req.Email, req.Redirect, loginMessage(err))
		return
	}

	handle := h.handle(c)
	handle.Write(result.Token, string(sess.Role), req.Remember)
	handle.WriteUser(result.User, req.Remember)
	session.Establish(c.Writer, sess, tokenstore.IsSecure(c.Request), req.Remember)

	if asJSON {
		response.Success(c, http.StatusOK, "login successful", result)
		return
	}
	c.Redirect(http.StatusSeeOther, result.Redirect)
}

// ========== Logout ==========

// Logout clears every trace of the session and sends the browser to login.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, _ := h.resolver.GetSession(c.Request)
	h.authService.Logout(c.Request.Context(), sess, c.ClientIP(), c.GetHeader("User-Agent"), middleware.GetRequestID(c))

	h.handle(c).Clear()
	h.resolver.Logout(c)
}

// ========== Profile ==========

// GetMe returns the backend profile of the signed-in user.
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), h.handle(c))
	if err != nil {
		response.FromError(c, err, "failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, "profile retrieved", user)
}

func (h *AuthHandler) handle(c *gin.Context) *tokenstore.Handle {
	if hd, ok := middleware.GetHandle(c); ok {
		return hd
	}
	return h.store.Bind(c)
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, email, redirect, msg string) {
	c.Render(status, render.HTML{
		Template: pages,
		Name:     "login",
		Data: loginPage{
			Action:   h.resolver.LoginPath(),
			Email:    email,
			Redirect: redirect,
			Error:    msg,
		},
	})
}

func statusFor(err error) int {
	if status := apiclient.StatusOf(err); status >= http.StatusBadRequest {
		return status
	}
	if apiclient.IsTransport(err) && xerrors.HTTPStatus(err) == http.StatusInternalServerError {
		return http.StatusBadGateway
	}
	return xerrors.HTTPStatus(err)
}

func loginMessage(err error) string {
	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, xerrors.ErrRateLimited):
		return "Demasiados intentos. Inténtalo de nuevo en 15 minutos"
	case errors.Is(err, xerrors.ErrUnauthorized):
		return "Credenciales inválidas"
	}
	return "Error al iniciar sesión"
}
