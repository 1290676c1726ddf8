package template

import (
	"fmt"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)\s*\}\}`)

// Render substitutes {{a.b.c}} tokens in s against the variable bag,
// walking each dotted path through nested maps. A token whose path does not
// resolve is left verbatim so missing variables are visible in the output.
func Render(s string, vars map[string]interface{}) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		path := tokenPattern.FindStringSubmatch(token)[1]
		value, ok := lookup(vars, strings.Split(path, "."))
		if !ok {
			return token
		}
		return stringify(value)
	})
}

func lookup(vars map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = vars
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

func stringify(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		// Whole numbers render without the trailing ".000000"
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", v)
	}
}
