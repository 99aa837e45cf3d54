package handlers

import (
	"net/http"

	"instaclone/logger"
	"instaclone/middleware"
	"instaclone/services"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusOf(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusUnprocessableEntity
	case services.KindConflict:
		return http.StatusConflict
	case services.KindInvalidCredentials, services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail renders err as an error page.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindUnauthenticated:
		middleware.ClearTokenCookie(c)
		redirect(c, "/login")
		return
	case services.KindInternal:
		h.report(c, err)
	}

	status := statusOf(kind)
	h.render(c, status, "error.html", gin.H{
		"Title":  http.StatusText(status),
		"Status": status,
		"Error":  services.MessageOf(err),
	})
}

// failForm re-renders a form with the error inline when the user can fix
// it, and falls back to fail otherwise.
func (h *Handler) failForm(c *gin.Context, name string, data gin.H, err error) {
	switch kind := services.KindOf(err); kind {
	case services.KindValidation, services.KindConflict, services.KindInvalidCredentials:
		data["Error"] = services.MessageOf(err)
		h.render(c, statusOf(kind), name, data)
	default:
		h.fail(c, err)
	}
}

// report logs an internal error and sends it to Sentry when enabled.
func (h *Handler) report(c *gin.Context, err error) {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	}
	if u := middleware.CurrentUser(c); u != nil {
		fields = append(fields, zap.String("user_id", u.ID.Hex()))
	}
	logger.Error("request failed", fields...)
	_ = c.Error(err)

	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}
