// Package normalize turns loosely shaped model responses into fully populated
// domain values. Missing optional fields are defaulted; missing identity fields
// and gross shape violations are errors.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Entity names used in errors and logs.
const (
	EntityGuidance      = "guidance"
	EntityExamQuestions = "exam questions"
	EntityExamResults   = "exam feedback"
	EntityReport        = "progress report"
)

// parsePayload strips the fence and checks that the payload is valid JSON.
// It returns the payload and its first significant byte.
func parsePayload(entity, text string) ([]byte, byte, error) {
	payload := []byte(StripFence(text))
	var raw json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		slog.Debug("rejected model payload", "entity", entity, "error", err)
		return nil, 0, &ParseError{Entity: entity, Err: err}
	}
	raw = bytes.TrimSpace(raw)
	return raw, raw[0], nil
}

// parseObject is parsePayload for entities whose top level must be a JSON object.
func parseObject(entity, text string) ([]byte, error) {
	payload, first, err := parsePayload(entity, text)
	if err != nil {
		return nil, err
	}
	if first != '{' {
		slog.Debug("rejected model payload", "entity", entity, "reason", "top level is not an object")
		return nil, &ParseError{Entity: entity, Err: errors.New("top-level value is not a JSON object")}
	}
	return payload, nil
}

// decode unmarshals an already validated payload. Type mismatches become shape errors.
func decode(entity string, payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "(root)"
			}
			return shapeErr(entity, fmt.Sprintf("field %s: expected %s, got %s", field, typeErr.Type, typeErr.Value))
		}
		return &ParseError{Entity: entity, Err: err}
	}
	return nil
}

func shapeErr(entity, reason string) error {
	slog.Debug("rejected model payload", "entity", entity, "reason", reason)
	return &ShapeError{Entity: entity, Reason: reason}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
