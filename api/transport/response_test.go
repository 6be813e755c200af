package transport

import (
	"encoding/json"
	"testing"

	"github.com/fastygo/planner/domain"
)

func TestNewErrorCarriesReason(t *testing.T) {
	env := NewError(domain.ErrCodeInvalid, "schedule event must start before it ends", domain.ReasonInvalidInterval, nil)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(env.String()), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["status"] != StatusError || decoded["code"] != "INVALID" {
		t.Fatalf("envelope = %v", decoded)
	}
	body, ok := decoded["error"].(map[string]any)
	if !ok || body["reason"] != "invalid_interval" {
		t.Fatalf("error body = %v", decoded["error"])
	}
	if _, ok := decoded["data"]; ok {
		t.Fatalf("error envelope should omit data: %v", decoded)
	}
}

func TestNewSuccessOmitsError(t *testing.T) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(NewSuccess(map[string]int{"n": 1}, nil).String()), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["status"] != StatusSuccess {
		t.Fatalf("envelope = %v", decoded)
	}
	if _, ok := decoded["error"]; ok {
		t.Fatalf("success envelope should omit error: %v", decoded)
	}
	if _, ok := decoded["code"]; ok {
		t.Fatalf("success envelope should omit code: %v", decoded)
	}
}
