package dispatch

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "github.com/scoring-lab/project-scoring/internal/api/v1"
	"github.com/scoring-lab/project-scoring/internal/auth"
	"github.com/scoring-lab/project-scoring/internal/schema"
)

// Service wires the method registry and the authenticator behind the
// POST /method/ endpoint.
type Service struct {
	registry      *Registry
	authenticator *auth.Authenticator
	envelope      *schema.Schema
}

func NewService(registry *Registry, authenticator *auth.Authenticator) *Service {
	if registry == nil {
		panic("dispatch: registry must not be nil")
	}
	if authenticator == nil {
		panic("dispatch: authenticator must not be nil")
	}
	return &Service{
		registry:      registry,
		authenticator: authenticator,
		envelope:      envelopeSchema(),
	}
}

// envelopeSchema describes the top-level request object. token may be empty
// (it still fails authentication), method may not.
func envelopeSchema() *schema.Schema {
	return schema.New().
		Add("account", schema.NewChar(false, true)).
		Add("login", schema.NewChar(true, true)).
		Add("token", schema.NewChar(true, true)).
		Add("arguments", schema.NewArguments(true, true)).
		Add("method", schema.NewChar(true, false))
}

// RegisterRoutes registers the method API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/method/", s.MethodHandler)
	r.POST("/method", s.MethodHandler)
}

// MethodHandler runs the fixed request pipeline. Order matters: a malformed
// body terminates before any field check, envelope validation precedes
// authentication, and authentication precedes method lookup, so a bad token
// is reported even for an unknown method name.
func (s *Service) MethodHandler(c *gin.Context) {
	requestID := c.GetHeader("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		slog.Warn("Malformed request body", "request_id", requestID, "error", err)
		writeError(c, http.StatusBadRequest, nil)
		return
	}
	if len(payload) == 0 {
		slog.Warn("Empty request body", "request_id", requestID)
		writeError(c, http.StatusUnprocessableEntity, nil)
		return
	}

	envelope, errs := s.envelope.Validate(payload)
	if len(errs) > 0 {
		slog.Warn("Envelope validation failed", "request_id", requestID, "errors", errs)
		writeError(c, http.StatusUnprocessableEntity, errs)
		return
	}

	login := envelope.String("login")
	authCtx := AuthContext{
		Login:      login,
		Privileged: s.authenticator.IsPrivileged(login),
	}
	if !s.authenticator.Check(envelope.String("account"), login, envelope.String("token")) {
		slog.Warn("Authentication failed", "request_id", requestID, "login", login)
		writeError(c, http.StatusForbidden, nil)
		return
	}

	method := envelope.String("method")
	handler, ok := s.registry.Get(method)
	if !ok {
		slog.Warn("Unknown method", "request_id", requestID, "method", method)
		writeError(c, http.StatusNotFound, nil)
		return
	}

	args, errs := handler.Validate(envelope.Map("arguments"))
	if len(errs) > 0 {
		slog.Warn("Argument validation failed", "request_id", requestID, "method", method, "errors", errs)
		writeError(c, http.StatusUnprocessableEntity, errs)
		return
	}

	result, err := handler.Run(c.Request.Context(), args, authCtx)
	if err != nil {
		slog.Error("Method failed", "request_id", requestID, "method", method, "error", err)
		writeError(c, http.StatusInternalServerError, nil)
		return
	}

	slog.Info("Method dispatched",
		"request_id", requestID,
		"method", method,
		"login", login,
		"privileged", authCtx.Privileged)
	c.JSON(http.StatusOK, v1.OK(result))
}

func writeError(c *gin.Context, code int, detail any) {
	if errs, ok := detail.([]string); ok && len(errs) == 0 {
		detail = nil
	}
	c.JSON(code, v1.Err(code, detail))
}
