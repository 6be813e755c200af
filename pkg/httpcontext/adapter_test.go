package httpcontext

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/planner/pkg/logger"
)

func TestAttachKeepsClientRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "abc-123")

	ctx, cancel := NewAdapter(context.Background(), time.Second).Attach(&rc)
	defer cancel()

	if got := appLogger.RequestID(ctx); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
	if got := string(rc.Response.Header.Peek(HeaderRequestID)); got != "abc-123" {
		t.Fatalf("response header = %q", got)
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected deadline")
	}
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLength+1))

	ctx, cancel := NewAdapter(nil, 0).Attach(&rc)
	defer cancel()

	if _, err := uuid.Parse(appLogger.RequestID(ctx)); err != nil {
		t.Fatalf("expected generated uuid, got %q", appLogger.RequestID(ctx))
	}
}

func TestAttachFollowsBaseContext(t *testing.T) {
	base, stop := context.WithCancel(context.Background())
	var rc fasthttp.RequestCtx
	ctx, cancel := NewAdapter(base, time.Minute).Attach(&rc)
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context outlived base")
	}
}
