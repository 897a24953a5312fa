package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload is matched by every *MalformedPayloadError.
var ErrMalformedPayload = errors.New("malformed payload")

type Reason string

const (
	ReasonEmptyBody          Reason = "empty body"
	ReasonInvalidJSON        Reason = "invalid json"
	ReasonNotObject          Reason = "not a json object"
	ReasonMissingMessage     Reason = "missing message field"
	ReasonMessageNotString   Reason = "message is not a string"
	ReasonTooLarge           Reason = "body too large"
	ReasonUnreadable         Reason = "unreadable body"
	ReasonUnsupportedContent Reason = "unsupported content type"
)

type MalformedPayloadError struct {
	Reason Reason
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed payload: %s", e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func Malformed(reason Reason, err error) error {
	return &MalformedPayloadError{Reason: reason, Err: err}
}

// LogMessage is the validated payload of a POST /logs request.
type LogMessage struct {
	Message string `json:"message"`
}

// DecodeLogMessage validates that body is a single JSON object with a string
// "message" key. Other keys are ignored.
func DecodeLogMessage(body []byte) (LogMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return LogMessage{}, Malformed(ReasonEmptyBody, nil)
	}
	if !json.Valid(trimmed) {
		return LogMessage{}, Malformed(ReasonInvalidJSON, nil)
	}
	if trimmed[0] != '{' {
		return LogMessage{}, Malformed(ReasonNotObject, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return LogMessage{}, Malformed(ReasonInvalidJSON, err)
	}

	raw, ok := fields["message"]
	if !ok {
		return LogMessage{}, Malformed(ReasonMissingMessage, nil)
	}

	// null would unmarshal into a string without error.
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return LogMessage{}, Malformed(ReasonMessageNotString, nil)
	}

	var msg LogMessage
	if err := json.Unmarshal(raw, &msg.Message); err != nil {
		return LogMessage{}, Malformed(ReasonMessageNotString, err)
	}

	return msg, nil
}
