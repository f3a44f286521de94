package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/linkedintel/internal/ai"
)

// CleanJSONResponse repairs the usual defects of model JSON output: markdown code
// fences, prose around the object, raw line breaks inside string values and
// trailing commas. It does not validate the result.
func CleanJSONResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	cleaned = extractObject(cleaned)

	var b strings.Builder
	b.Grow(len(cleaned))

	inString, escaped := false, false
	for i := 0; i < len(cleaned); i++ {
		ch := cleaned[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString && (ch == '\n' || ch == '\r'):
			if ch == '\r' && i+1 < len(cleaned) && cleaned[i+1] == '\n' {
				i++
			}
			b.WriteString(`\n`)
			continue
		case !inString && ch == ',' && closesAfter(cleaned, i+1):
			continue
		}
		b.WriteByte(ch)
	}

	return b.String()
}

// ParseJSON sanitizes raw model output and decodes it into a JSON object.
func ParseJSON(raw string) (map[string]any, error) {
	cleaned := CleanJSONResponse(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ai.ErrMalformedResponse)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: response is not an object", ai.ErrMalformedResponse)
	}

	return payload, nil
}

// decodePayload copies a loosely typed payload into target, accepting numbers
// given as strings.
func decodePayload(payload map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	return decoder.Decode(payload)
}

// extractObject cuts s down to the outermost JSON object, or array when s starts
// with one, dropping prose and stray fences on either side.
func extractObject(s string) string {
	if s == "" {
		return s
	}

	start, closing := strings.IndexByte(s, '{'), byte('}')
	if s[0] == '[' {
		start, closing = 0, ']'
	}
	if start == -1 {
		return s
	}

	end := strings.LastIndexByte(s, closing)
	if end <= start {
		return s
	}
	return s[start : end+1]
}

func closesAfter(s string, from int) bool {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}
