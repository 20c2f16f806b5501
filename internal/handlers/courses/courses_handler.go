// internal/handlers/courses/courses_handler.go
package courses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/domain/course"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/response"
	coursesvc "rbadmin/internal/service/courses"
)

type CourseHandler struct {
	courseService *coursesvc.CourseService
	logger        *zap.Logger
}

func NewCourseHandler(courseService *coursesvc.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, logger: logger}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	var q course.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}
	data, err := h.courseService.List(c.Request.Context(), middleware.MustGetHandle(c), q)
	if err != nil {
		response.FromError(c, err, "failed to list courses")
		return
	}
	response.Success(c, http.StatusOK, "courses retrieved", data)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	data, err := h.courseService.Get(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "failed to load course")
		return
	}
	response.Success(c, http.StatusOK, "course retrieved", data)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var form course.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	data, err := h.courseService.Create(c.Request.Context(), middleware.MustGetHandle(c), form)
	if err != nil {
		response.FromError(c, err, "failed to create course")
		return
	}
	response.Success(c, http.StatusCreated, "course created", data)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var form course.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	data, err := h.courseService.Update(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id"), form)
	if err != nil {
		response.FromError(c, err, "failed to update course")
		return
	}
	response.Success(c, http.StatusOK, "course updated", data)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseService.Delete(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id")); err != nil {
		response.FromError(c, err, "failed to delete course")
		return
	}
	response.Success(c, http.StatusOK, "course deleted", nil)
}

// Enroll handles POST /courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	var form course.EnrollForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	data, err := h.courseService.Enroll(c.Request.Context(), middleware.MustGetHandle(c), c.Param("id"), form)
	if err != nil {
		response.FromError(c, err, "failed to enroll user")
		return
	}
	response.Success(c, http.StatusCreated, "user enrolled", data)
}
