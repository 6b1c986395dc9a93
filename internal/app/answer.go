package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// NoAnswerFallback is returned when the chat webhook responds without an output.
const NoAnswerFallback = "No answer received from webhook"

var errAnswerNotJSON = errors.New("chat webhook returned a non-JSON body")

type answerShape int

const (
	shapeScalar answerShape = iota
	shapeList
	shapeObject
)

// answerPayload is the decoded chat webhook body. Only the variant named by
// shape is populated.
type answerPayload struct {
	shape  answerShape
	items  []json.RawMessage
	output json.RawMessage
}

type outputEnvelope struct {
	Output json.RawMessage `json:"output"`
}

func parseAnswerPayload(raw []byte) (answerPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return answerPayload{}, errAnswerNotJSON
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return answerPayload{}, fmt.Errorf("decode chat webhook list failed: %w", err)
		}
		return answerPayload{shape: shapeList, items: items}, nil
	case '{':
		var env outputEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return answerPayload{}, fmt.Errorf("decode chat webhook object failed: %w", err)
		}
		return answerPayload{shape: shapeObject, output: env.Output}, nil
	default:
		return answerPayload{shape: shapeScalar}, nil
	}
}

// answer returns the output text and whether one was present.
func (p answerPayload) answer() (string, bool) {
	switch p.shape {
	case shapeList:
		if len(p.items) == 0 {
			return "", false
		}
		first := bytes.TrimSpace(p.items[0])
		if len(first) == 0 || first[0] != '{' {
			return "", false
		}
		var env outputEnvelope
		if err := json.Unmarshal(first, &env); err != nil {
			return "", false
		}
		return renderOutput(env.Output)
	case shapeObject:
		return renderOutput(p.output)
	}
	return "", false
}

// renderOutput treats null, "", false and 0 as missing. Strings are returned
// verbatim; any other JSON value is returned as compact JSON text.
func renderOutput(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		if !v {
			return "", false
		}
	case float64:
		if v == 0 {
			return "", false
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false
	}
	return buf.String(), true
}

// ExtractAnswer normalizes a chat webhook body into the answer text.
func ExtractAnswer(raw []byte) (string, error) {
	payload, err := parseAnswerPayload(raw)
	if err != nil {
		return "", err
	}
	if text, ok := payload.answer(); ok {
		return text, nil
	}
	return NoAnswerFallback, nil
}
