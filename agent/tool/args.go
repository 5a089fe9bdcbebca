package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

// Args holds coerced argument values: string, int64, float64 or bool.
type Args map[string]any

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Int(name string) int {
	n, _ := a[name].(int64)
	return int(n)
}

func (a Args) Float(name string) (float64, bool) {
	f, ok := a[name].(float64)
	return f, ok
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func coerceArgs(params map[string]Param, raw map[string]any) (Args, error) {
	unknown := make([]string, 0)
	for name := range raw {
		if _, ok := params[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown parameter(s) %s", contractx.ErrInvalidArgument, strings.Join(unknown, ", "))
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Args, len(params))
	for _, name := range names {
		p := params[name]
		v, present := raw[name]
		if present && v == nil {
			present = false
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			present = false
		}
		if !present {
			if p.Required {
				return nil, fmt.Errorf("%w: missing required parameter %q", contractx.ErrInvalidArgument, name)
			}
			continue
		}

		coerced, err := coerce(p.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %v", contractx.ErrInvalidArgument, name, err)
		}
		out[name] = coerced
	}
	return out, nil
}

func coerce(t ParamType, v any) (any, error) {
	switch t {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return strings.TrimSpace(s), nil
	case Number:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return f, nil
	case Integer:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("expected integer, got %v", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, fmt.Errorf("integer %v out of range", f)
		}
		return int64(f), nil
	case Boolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", b)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected boolean, got %T", v)
		}
	default:
		return nil, fmt.Errorf("unsupported type %q", t)
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected finite number, got %v", f)
	}
	return f, nil
}
