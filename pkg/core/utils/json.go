// Package utils holds small helpers for taming LLM output: JSON repair for
// structured responses and markdown flattening for report rendering.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the usual LLM JSON mistakes: single quotes, unquoted
// keys, trailing commas, unclosed brackets, markdown code fences around the
// payload.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseLenientJSON decodes JSON into v after stripping any markdown fence,
// falling back to Hjson (comments, single quotes, unquoted keys, trailing
// commas) and only then to the repairer. Hjson goes first because the
// repairer re-encodes numbers through float32, mangling literals like 0.7
// into 0.699999988079071.
func ParseLenientJSON(raw string, v interface{}) error {
	stripped := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(stripped), v); err == nil {
		return nil
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(stripped), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(normalized, v); err == nil {
				return nil
			}
		}
	}

	repaired, err := RepairJSON(stripped)
	if err != nil {
		return fmt.Errorf("unparsable model output: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("model output does not match schema: %w", err)
	}
	return nil
}
