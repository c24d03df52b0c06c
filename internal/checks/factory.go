package checks

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// Rule names accepted by Create.
const (
	RuleHeaderGuards = "header-guards"
	RuleTodos        = "todos"
	RuleNamespaces   = "namespaces"
)

// Rules returns the known rule names in display order.
func Rules() []string {
	return []string{RuleHeaderGuards, RuleTodos, RuleNamespaces}
}

// Create builds the checker registered under name. params comes from the
// checks section of .conform.yaml and may be nil.
func Create(name string, params map[string]any) (Checker, error) {
	switch name {
	case RuleHeaderGuards:
		var v struct {
			SourceRoot string `mapstructure:"source_root"`
		}
		if err := decodeParams(name, params, &v); err != nil {
			return nil, err
		}
		return &HeaderGuardChecker{SourceRoot: v.SourceRoot}, nil
	case RuleTodos:
		var v struct {
			Markers []string `mapstructure:"markers"`
		}
		if err := decodeParams(name, params, &v); err != nil {
			return nil, err
		}
		for _, m := range v.Markers {
			if m == "" {
				return nil, fmt.Errorf("check %q: empty marker", name)
			}
		}
		return &AnnotationChecker{Markers: v.Markers}, nil
	case RuleNamespaces:
		if len(params) > 0 {
			keys := make([]string, 0, len(params))
			for k := range params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("check %q takes no parameters, got %v", name, keys)
		}
		return &NamespaceChecker{}, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid check", name)
	}
}

func decodeParams(name string, params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("check %q: %w", name, err)
	}
	return nil
}
