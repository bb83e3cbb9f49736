package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BerniceZTT/telecaller_crm/models"
)

const tracerName = "telecaller_crm/service"

// startSpan 为线索操作创建span，未配置 TracerProvider 时为空实现
func startSpan(ctx context.Context, name string, identity models.Identity, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("user.id", identity.ID),
		attribute.String("user.role", string(identity.Role)),
	)
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// finishSpan 记录错误并结束span
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
