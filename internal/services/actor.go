package services

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"fitcomp/internal/apperr"
	"fitcomp/internal/metrics"
	"fitcomp/internal/models"
)

// Actor is the authenticated identity a request runs as. The edge resolves it
// once per request and passes it explicitly into every operation.
type Actor struct {
	UserID    uint
	Role      models.Role
	IPAddress string
}

// AuthContext is the identity produced by a login or an impersonation.
type AuthContext struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
}

// Nullable distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a present null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// denied logs and counts a refused operation, then hands err back.
func denied(operation string, actor Actor, err error) error {
	if err == nil {
		return nil
	}
	slog.Warn("operation denied",
		"operation", operation,
		"user_id", actor.UserID,
		"role", actor.Role,
		"reason", err.Error(),
	)
	metrics.PolicyDenials.WithLabelValues(operation, apperr.Label(err)).Inc()
	return err
}
