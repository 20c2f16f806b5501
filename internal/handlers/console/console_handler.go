// internal/handlers/console/console_handler.go
package console

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"rbadmin/internal/domain/user"
	"rbadmin/internal/pkg/response"
	"rbadmin/internal/pkg/session"
)

// ConsoleHandler renders the admin page shells. Each shell names the JSON
// endpoint its table or form loads from.
type ConsoleHandler struct {
	adminPrefix string
	apiPrefix   string
	menu        []menuItem
	logger      *zap.Logger
}

func NewConsoleHandler(adminPrefix string, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		adminPrefix: adminPrefix,
		apiPrefix:   adminPrefix + "/api",
		menu: []menuItem{
			{Name: "Dashboard", Href: adminPrefix},
			{Name: "Usuarios", Children: []menuItem{
				{Name: "Clientes", Href: adminPrefix + "/users/clients"},
				{Name: "Miembros", Href: adminPrefix + "/users/members"},
			}},
			{Name: "Cursos", Href: adminPrefix + "/courses"},
			{Name: "Ajustes", Href: adminPrefix + "/settings"},
		},
		logger: logger,
	}
}

// Dashboard handles GET /admin. Any signed-in user may see it.
func (h *ConsoleHandler) Dashboard(c *gin.Context) {
	h.render(c, "Dashboard Admin", "")
}

// Users handles GET /admin/users/:type
func (h *ConsoleHandler) Users(c *gin.Context) {
	q := user.ListQuery{Type: user.ListType(c.Param("type"))}
	if q.Type == "" || q.Normalize() != nil {
		response.NotFound(c, "unknown user listing")
		return
	}
	title := "Clientes"
	if q.Type == user.Members {
		title = "Miembros"
	}
	h.render(c, title, h.apiPrefix+"/users?type="+string(q.Type))
}

// Courses handles GET /admin/courses
func (h *ConsoleHandler) Courses(c *gin.Context) {
	h.render(c, "Cursos", h.apiPrefix+"/courses")
}

// Settings handles GET /admin/settings
func (h *ConsoleHandler) Settings(c *gin.Context) {
	h.render(c, "Ajustes", h.apiPrefix+"/settings")
}

func (h *ConsoleHandler) render(c *gin.Context, heading, endpoint string) {
	sess, ok := session.FromContext(c)
	if !ok {
		h.logger.Error("console page mounted without a session middleware", zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "session unavailable", nil)
		return
	}

	name := sess.Name
	if name == "" {
		name = sess.Email
	}
	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     "shell",
		Data: shellPage{
			Title:    heading + " | Admin",
			Heading:  heading,
			User:     name,
			Role:     string(sess.Role),
			Endpoint: endpoint,
			Menu:     h.menu,
		},
	})
}
