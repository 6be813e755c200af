package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/planner/api/transport"
	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/internal/infrastructure/monitor"
	"github.com/fastygo/planner/pkg/httpcontext"
)

type staticStatus struct{ status monitor.Status }

func (s staticStatus) GetStatus() monitor.Status { return s.status }
func (s staticStatus) IsReady() bool             { return s.status.Store }

func TestLive(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)
	var ctx fasthttp.RequestCtx
	h.Live(&ctx)

	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	var body map[string]bool
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil || !body["ok"] {
		t.Fatalf("body = %s (%v)", ctx.Response.Body(), err)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		status monitor.Status
		want   int
	}{
		{name: "store up", status: monitor.Status{Store: true, StoreDriver: "bolt"}, want: http.StatusOK},
		{name: "cache down only", status: monitor.Status{Store: true, CacheEnabled: true}, want: http.StatusOK},
		{name: "store down", status: monitor.Status{Store: false, StoreDriver: "postgres"}, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(staticStatus{tt.status}, httpcontext.NewAdapter(nil, time.Second), nil)
			var ctx fasthttp.RequestCtx
			h.Ready(&ctx)

			if ctx.Response.StatusCode() != tt.want {
				t.Fatalf("status = %d, want %d", ctx.Response.StatusCode(), tt.want)
			}
			if len(ctx.Response.Header.Peek(httpcontext.HeaderRequestID)) == 0 {
				t.Fatal("missing request id header")
			}
			var env transport.Envelope
			if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Data == nil && env.Meta == nil {
				t.Fatalf("status payload missing: %s", ctx.Response.Body())
			}
		})
	}
}

func TestReadyWithoutMonitor(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)
	var ctx fasthttp.RequestCtx
	h.Ready(&ctx)

	if ctx.Response.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", ctx.Response.StatusCode(), http.StatusServiceUnavailable)
	}
	var env transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Code != transport.CodeUnavailable || env.Status != transport.StatusError {
		t.Fatalf("envelope = %s", ctx.Response.Body())
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   domain.ErrorCode
		wantReason domain.Reason
		wantMsg    string
	}{
		{
			name:       "domain error keeps reason",
			err:        fmt.Errorf("create event: %w", domain.ErrInvalidInterval),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrCodeInvalid,
			wantReason: domain.ReasonInvalidInterval,
		},
		{
			name:       "internal error is masked",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.ErrCodeInternal,
			wantMsg:    "internal error",
		},
		{
			name:       "deadline becomes timeout",
			err:        fmt.Errorf("list: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   transport.CodeTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBaseHandler(nil, nil)
			var ctx fasthttp.RequestCtx
			h.respondError(context.Background(), &ctx, tt.err)

			if ctx.Response.StatusCode() != tt.wantStatus {
				t.Fatalf("status = %d, want %d", ctx.Response.StatusCode(), tt.wantStatus)
			}
			var env transport.Envelope
			if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Code != tt.wantCode || env.Error == nil {
				t.Fatalf("envelope = %s", ctx.Response.Body())
			}
			if env.Error.Reason != tt.wantReason {
				t.Fatalf("reason = %q, want %q", env.Error.Reason, tt.wantReason)
			}
			if tt.wantMsg != "" && env.Error.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", env.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{err: domain.ErrInvalidInterval, want: http.StatusBadRequest},
		{err: fmt.Errorf("wrapped: %w", domain.ErrDanglingTask), want: http.StatusBadRequest},
		{err: domain.ErrTaskNotFound, want: http.StatusNotFound},
		{err: domain.ErrDuplicateEmail, want: http.StatusConflict},
		{err: domain.ErrIntegrity, want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := mapError(tt.err); got != tt.want {
			t.Errorf("mapError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
