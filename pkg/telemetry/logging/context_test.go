package logging

import (
	"context"
	"testing"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		set  func(context.Context, string) context.Context
		get  func(context.Context) string
	}{
		{"request id", WithRequestID, GetRequestID},
		{"actor", WithActor, GetActor},
		{"vertical", WithVertical, GetVertical},
		{"sub-vertical", WithSubVertical, GetSubVertical},
		{"region", WithRegion, GetRegion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("empty context: got %q, want empty", got)
			}
			if got := tt.get(tt.set(ctx, "value")); got != "value" {
				t.Errorf("round trip: got %q, want %q", got, "value")
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	if fields := extractContextFields(context.Background()); len(fields) != 0 {
		t.Errorf("empty context: fields = %v", fields)
	}

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithRegion(ctx, "UAE")
	fields := extractContextFields(ctx)
	if len(fields) != 4 {
		t.Fatalf("got %d fields, want 4: %v", len(fields), fields)
	}
	if fields[0] != "request_id" || fields[1] != "req-1" {
		t.Errorf("fields = %v", fields)
	}
	if fields[2] != "region" || fields[3] != "UAE" {
		t.Errorf("fields = %v", fields)
	}
}
