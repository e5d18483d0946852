package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Action represents the action being audited
type Action string

const (
	ActionLogin    Action = "login"
	ActionExchange Action = "exchange"
	ActionLogout   Action = "logout"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Event represents an audit event
type Event struct {
	ID        uuid.UUID
	Action    Action
	Status    Status
	ActorID   *uuid.UUID
	Role      string
	IPAddress string
	UserAgent string
	RequestID string
	Reason    string
	CreatedAt time.Time
}

// Logger writes audit events as structured log lines on a dedicated
// "audit" logger, so they can be routed separately from request logs.
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{log: base.Named("audit")}
}

// Log records an audit event
func (l *Logger) Log(event *Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	fields := []zap.Field{
		zap.String("event_id", event.ID.String()),
		zap.String("action", string(event.Action)),
		zap.String("status", string(event.Status)),
		zap.String("ip_address", event.IPAddress),
		zap.String("user_agent", event.UserAgent),
		zap.String("request_id", event.RequestID),
		zap.Time("created_at", event.CreatedAt),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.String()))
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", event.Role))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}

	if event.Status == StatusFailure {
		l.log.Warn("audit event", fields...)
		return
	}
	l.log.Info("audit event", fields...)
}

// LogFromContext fills request details from an Echo context and logs the event
func (l *Logger) LogFromContext(c echo.Context, action Action, status Status, actorID *uuid.UUID, role, reason string) {
	l.Log(&Event{
		Action:    action,
		Status:    status,
		ActorID:   actorID,
		Role:      role,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		Reason:    reason,
	})
}
