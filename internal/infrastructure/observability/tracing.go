package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "loveslices-server"
)

// GetTracer returns the tracer for the loveslices service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ConversationAttributes returns common attributes for conversation spans.
func ConversationAttributes(conversationID, userID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("conversation.id", conversationID),
		attribute.String("conversation.user_id", userID),
	}
}

// StartTransitionSpan starts a new span for a conversation lifecycle transition.
func StartTransitionSpan(ctx context.Context, transition, conversationID, userID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "conversation."+transition,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(ConversationAttributes(conversationID, userID)...),
	)
	return ctx, span
}

// StartPairingSpan starts a new span for a response submission / pairing attempt.
func StartPairingSpan(ctx context.Context, questionID, userID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "pairing.submit",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("question.id", questionID),
			attribute.String("user.id", userID),
		),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddPhaseTransition adds a phase transition event to a span.
func AddPhaseTransition(span trace.Span, fromPhase, toPhase string) {
	span.AddEvent("phase.transition",
		trace.WithAttributes(
			attribute.String("phase.from", fromPhase),
			attribute.String("phase.to", toPhase),
		),
	)
}
