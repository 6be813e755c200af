package transport

import (
	"encoding/json"

	"github.com/fastygo/planner/domain"
)

// Codes the HTTP boundary adds on top of the domain error codes.
const (
	CodeUnavailable domain.ErrorCode = "UNAVAILABLE"
	CodeTimeout     domain.ErrorCode = "TIMEOUT"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every health and error response.
type Envelope struct {
	Status string           `json:"status"`
	Code   domain.ErrorCode `json:"code,omitempty"`
	Data   any              `json:"data,omitempty"`
	Error  *ErrorBody       `json:"error,omitempty"`
	Meta   any              `json:"meta,omitempty"`
}

// ErrorBody carries the message and, for domain errors, the violated rule.
type ErrorBody struct {
	Message string        `json:"message"`
	Reason  domain.Reason `json:"reason,omitempty"`
}

func NewSuccess(data any, meta any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewError builds an error envelope. An empty reason is omitted.
func NewError(code domain.ErrorCode, message string, reason domain.Reason, meta any) Envelope {
	return Envelope{
		Status: StatusError,
		Code:   code,
		Error:  &ErrorBody{Message: message, Reason: reason},
		Meta:   meta,
	}
}

// String renders the envelope for log fields.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
