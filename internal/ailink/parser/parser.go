// Package parser normalizes raw generated text into the value a template
// declares: the text itself or an ordered list of items.
package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strategy selects how raw generated text is normalized.
type Strategy int

const (
	// Identity returns the text unchanged.
	Identity Strategy = iota
	// CommaList splits the text into trimmed, non-empty items.
	CommaList
)

// commaListInstructions is appended to list prompts so the provider answers
// in a shape CommaList can split.
const commaListInstructions = "Your response should be a list of comma separated values, eg: `foo, bar, baz`"

// String returns the config name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Identity:
		return "identity"
	case CommaList:
		return "comma_list"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy resolves a config or frontmatter name. Empty means Identity.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "text":
		return Identity, nil
	case "comma_list", "comma-list", "list":
		return CommaList, nil
	default:
		return Identity, fmt.Errorf("unknown output parser %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Result holds a normalized value. List reports which field is meaningful.
type Result struct {
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
	List  bool     `json:"list"`
}

// Normalize applies strategy to raw. It never fails.
func Normalize(raw string, strategy Strategy) Result {
	if strategy != CommaList {
		return Result{Text: raw}
	}

	items := []string{}
	for _, segment := range strings.Split(raw, ",") {
		item := strings.TrimSpace(segment)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return Result{Items: items, List: true}
}

// FormatInstructions returns the prompt fragment a strategy needs, or ""
// when it needs none.
func FormatInstructions(strategy Strategy) string {
	if strategy == CommaList {
		return commaListInstructions
	}
	return ""
}

// Capitalize upper-cases the first letter of item and leaves the rest as is,
// so acronyms such as "NYSE" keep their case. It deliberately does not
// lower-case the remainder.
func Capitalize(item string) string {
	r, size := utf8.DecodeRuneInString(item)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return item
	}
	return string(unicode.ToUpper(r)) + item[size:]
}
