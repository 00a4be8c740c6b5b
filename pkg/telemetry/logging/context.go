package logging

import "context"

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ActorKey is the context key for the acting operator identity.
	ActorKey contextKey = "actor"

	// VerticalKey is the context key for the vertical key in play.
	VerticalKey contextKey = "vertical"

	// SubVerticalKey is the context key for the sub-vertical key in play.
	SubVerticalKey contextKey = "sub_vertical"

	// RegionKey is the context key for the region code in play.
	RegionKey contextKey = "region"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithActor adds an actor identity to the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor retrieves the actor identity from the context.
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(ActorKey).(string); ok {
		return actor
	}
	return ""
}

// WithVertical adds a vertical key to the context.
func WithVertical(ctx context.Context, vertical string) context.Context {
	return context.WithValue(ctx, VerticalKey, vertical)
}

// GetVertical retrieves the vertical key from the context.
func GetVertical(ctx context.Context) string {
	if vertical, ok := ctx.Value(VerticalKey).(string); ok {
		return vertical
	}
	return ""
}

// WithSubVertical adds a sub-vertical key to the context.
func WithSubVertical(ctx context.Context, subVertical string) context.Context {
	return context.WithValue(ctx, SubVerticalKey, subVertical)
}

// GetSubVertical retrieves the sub-vertical key from the context.
func GetSubVertical(ctx context.Context) string {
	if subVertical, ok := ctx.Value(SubVerticalKey).(string); ok {
		return subVertical
	}
	return ""
}

// WithRegion adds a region code to the context.
func WithRegion(ctx context.Context, region string) context.Context {
	return context.WithValue(ctx, RegionKey, region)
}

// GetRegion retrieves the region code from the context.
func GetRegion(ctx context.Context) string {
	if region, ok := ctx.Value(RegionKey).(string); ok {
		return region
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if actor := GetActor(ctx); actor != "" {
		fields = append(fields, "actor", actor)
	}
	if vertical := GetVertical(ctx); vertical != "" {
		fields = append(fields, "vertical", vertical)
	}
	if subVertical := GetSubVertical(ctx); subVertical != "" {
		fields = append(fields, "sub_vertical", subVertical)
	}
	if region := GetRegion(ctx); region != "" {
		fields = append(fields, "region", region)
	}
	return fields
}
