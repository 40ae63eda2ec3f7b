package utils

import (
	"context"

	"github.com/balanoilmart/ledger_backend/appctx"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeySessionId     = appctx.ContextKeySessionId
	ContextKeyUserName      = appctx.ContextKeyUserName
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetSessionIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeySessionId)
}

func SetSessionIdInContext(ctx context.Context, sessionId string) context.Context {
	return appctx.Set(ctx, ContextKeySessionId, sessionId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

// SessionAttributes returns the request labels present in ctx as span attributes.
func SessionAttributes(ctx context.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if v, ok := GetCorrelationIdFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("correlation.id", v))
	}
	if v, ok := GetSessionIdFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("session.id", v))
	}
	if v, ok := GetUserNameFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("user.name", v))
	}
	return attrs
}
