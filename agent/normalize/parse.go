package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type ParseMode string

const (
	ParseModeStrict    ParseMode = "strict"
	ParseModeExtracted ParseMode = "json_extracted"
	ParseModeFallback  ParseMode = "fallback"
)

// Parsed is agent output that decoded as JSON. Text is the exact substring
// that was decoded.
type Parsed struct {
	Text  string
	Value any
	Mode  ParseMode
}

// Parse decodes raw agent output: the whole input as JSON first, then the
// fenced or fence-trimmed body, then the first balanced object or array span
// that decodes.
func Parse(raw string) (Parsed, error) {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		if v, ok := decode(trimmed); ok {
			return Parsed{Text: trimmed, Value: v, Mode: ParseModeStrict}, nil
		}
	}

	cleaned := cleanModelJSON(raw)
	if v, ok := decode(cleaned); ok {
		return Parsed{Text: cleaned, Value: v, Mode: ParseModeStrict}, nil
	}

	for _, source := range []string{cleaned, raw} {
		for _, span := range balancedSpans(source) {
			if v, ok := decode(span); ok {
				return Parsed{Text: span, Value: v, Mode: ParseModeExtracted}, nil
			}
		}
	}
	return Parsed{Text: cleaned, Mode: ParseModeFallback}, fmt.Errorf("%w: no decodable JSON in %d bytes", contractx.ErrMalformedResponse, len(raw))
}

func decode(s string) (any, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// cleanModelJSON returns the body of the first fenced code block, or the
// input with stray fence markers trimmed.
func cleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	if body, ok := fencedBlock(s); ok {
		return body
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if !strings.ContainsAny(tag, "{[") {
			body = body[nl+1:]
		}
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// balancedSpans lists top-level {...} and [...] spans in order of appearance.
// Brackets inside JSON strings are ignored.
func balancedSpans(input string) []string {
	var spans []string
	for from := 0; from < len(input); {
		start, end := nextBalancedSpan(input, from)
		switch {
		case start < 0:
			return spans
		case end < 0:
			// unterminated opener, retry past it
			from = start + 1
		default:
			spans = append(spans, input[start:end])
			from = end
		}
	}
	return spans
}

func nextBalancedSpan(input string, from int) (int, int) {
	start := -1
	depth := 0
	var open, close byte
	inString := false
	escaped := false

	for i := from; i < len(input); i++ {
		ch := input[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if start < 0 {
			switch ch {
			case '{':
				open, close = '{', '}'
			case '[':
				open, close = '[', ']'
			default:
				continue
			}
			start = i
			depth = 1
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return start, -1
}
