package registry

import (
	"fmt"
	"sort"
)

// Kind is the declared type of a component parameter.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindIntList
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindIntList:
		return "int list"
	default:
		return "unknown"
	}
}

// ParamSpec declares one accepted parameter.
type ParamSpec struct {
	Kind     Kind
	Required bool
	// Positive requires numeric values to be > 0.
	Positive bool
	// Default is substituted when the parameter is absent. Ignored for
	// required parameters.
	Default any
}

// Schema is the set of parameters a component accepts, keyed by name.
type Schema map[string]ParamSpec

// Check validates params against the schema: no unknown keys, all required
// keys present, kinds coercible, positivity constraints met. The returned
// error names the offending field and the violated constraint.
func (s Schema) Check(params Params) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		spec, ok := s[key]
		if !ok {
			return fmt.Errorf("field %q: not an accepted parameter (accepted: %v)", key, s.keys())
		}
		v := params[key]
		switch spec.Kind {
		case KindInt:
			n, err := asInt(v)
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			if spec.Positive && n <= 0 {
				return fmt.Errorf("field %q: must be positive, got %d", key, n)
			}
		case KindFloat:
			f, err := asFloat(v)
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			if spec.Positive && f <= 0 {
				return fmt.Errorf("field %q: must be positive, got %v", key, f)
			}
		case KindBool:
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("field %q: expected bool, got %T", key, v)
			}
		case KindString:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("field %q: expected string, got %T", key, v)
			}
		case KindIntList:
			if _, err := asInts(v); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
		}
	}

	for name, spec := range s {
		if spec.Required {
			if _, ok := params[name]; !ok {
				return fmt.Errorf("field %q: required parameter missing", name)
			}
		}
	}
	return nil
}

// WithDefaults returns params extended with the schema's declared defaults
// for absent optional parameters. The input map is not modified.
func (s Schema) WithDefaults(params Params) Params {
	out := make(Params, len(params)+len(s))
	for k, v := range params {
		out[k] = v
	}
	for name, spec := range s {
		if spec.Default == nil || spec.Required {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = spec.Default
		}
	}
	return out
}

func (s Schema) keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Params is a component's keyword arguments, as decoded from the
// configuration document. Params survive only until assembly: factories
// convert them into typed options structs.
type Params map[string]any

// Int returns the named int parameter, or def when absent.
// Call only after Schema.Check; wrong kinds fall back to def.
func (p Params) Int(name string, def int) int {
	v, ok := p[name]
	if !ok {
		return def
	}
	n, err := asInt(v)
	if err != nil {
		return def
	}
	return n
}

// Int64 returns the named parameter as int64, or def when absent.
func (p Params) Int64(name string, def int64) int64 {
	return int64(p.Int(name, int(def)))
}

// Float returns the named float parameter, or def when absent.
func (p Params) Float(name string, def float64) float64 {
	v, ok := p[name]
	if !ok {
		return def
	}
	f, err := asFloat(v)
	if err != nil {
		return def
	}
	return f
}

// Bool returns the named bool parameter, or def when absent.
func (p Params) Bool(name string, def bool) bool {
	v, ok := p[name]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// String returns the named string parameter, or def when absent.
func (p Params) String(name, def string) string {
	v, ok := p[name]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Ints returns the named int-list parameter, or def when absent.
func (p Params) Ints(name string, def []int) []int {
	v, ok := p[name]
	if !ok {
		return def
	}
	ns, err := asInts(v)
	if err != nil {
		return def
	}
	return ns
}

// YAML decoding yields int, float64 or (for large values) int64; accept all
// integral representations.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asInts(v any) ([]int, error) {
	switch list := v.(type) {
	case []int:
		return list, nil
	case []any:
		out := make([]int, len(list))
		for i, item := range list {
			n, err := asInt(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of integers, got %T", v)
	}
}
