package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is a system/user message pair with named {placeholders}.
type Template struct {
	System            string
	User              string
	RequiredVariables []string
	PartialVariables  map[string]string
}

// Rendered is a template with every known placeholder substituted.
type Rendered struct {
	System string
	User   string
}

// Render substitutes partial variables, then vars, into both messages.
// Every required variable must be present in vars. Placeholders with no
// value are left as written.
func (t Template) Render(vars map[string]string) (Rendered, error) {
	var missing []string
	for _, name := range t.RequiredVariables {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Rendered{}, fmt.Errorf("missing required variables: %s", strings.Join(missing, ", "))
	}

	values := make(map[string]string, len(t.PartialVariables)+len(vars))
	for k, v := range t.PartialVariables {
		values[k] = v
	}
	for k, v := range vars {
		values[k] = v
	}

	return Rendered{
		System: substitute(t.System, values),
		User:   substitute(t.User, values),
	}, nil
}

// Placeholders returns the distinct placeholder names used by the template.
func (t Template) Placeholders() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, text := range []string{t.System, t.User} {
		for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			if _, ok := seen[match[1]]; ok {
				continue
			}
			seen[match[1]] = struct{}{}
			names = append(names, match[1])
		}
	}
	sort.Strings(names)
	return names
}

func substitute(text string, values map[string]string) string {
	if text == "" {
		return ""
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := token[1 : len(token)-1]
		if v, ok := values[name]; ok {
			return v
		}
		return token
	})
}
