package jobqueue

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint returns the canonical hash of pipeline and payload.
// Object keys are sorted at every depth and numbers keep their literal form,
// so structurally identical payloads hash identically regardless of field order.
func Fingerprint(pipeline Pipeline, payload json.RawMessage) (string, error) {
	canonical, err := canonicalize(pipeline, payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(pipeline Pipeline, payload json.RawMessage) ([]byte, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(normalizePayload(payload)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode payload: trailing data after JSON document")
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("payload must be a JSON object")
	}

	// encoding/json writes map keys in sorted order
	normalized := map[string]any{
		"pipeline": string(pipeline),
		"payload":  doc,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalizePayload treats an absent payload as an empty object.
func normalizePayload(payload json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(payload)) == 0 {
		return json.RawMessage(`{}`)
	}
	return payload
}
