package prompt

import (
	"fmt"
	"slices"

	"github.com/industrylens/industrylens/internal/ailink/parser"
)

// Entry binds a template to its heading and output parser. One record per
// question keeps heading, template and parser aligned.
type Entry struct {
	Slug     string
	Name     string
	Heading  string
	Group    string
	Position int
	Template Template
	Parser   parser.Strategy
	Source   string
}

// PrimaryVariable returns the first required variable.
func (e *Entry) PrimaryVariable() string {
	if e == nil || len(e.Template.RequiredVariables) == 0 {
		return ""
	}
	return e.Template.RequiredVariables[0]
}

func newEntry(cfg Config, source string) (*Entry, error) {
	strategy, err := parser.ParseStrategy(cfg.OutputParser)
	if err != nil {
		return nil, err
	}

	tmpl := Template{
		System:            cfg.SystemTemplate,
		User:              cfg.UserTemplate,
		RequiredVariables: slices.Clone(cfg.Input.RequiredVariables),
	}
	if instructions := parser.FormatInstructions(strategy); instructions != "" {
		tmpl.PartialVariables = map[string]string{VarFormatInstructions: instructions}
	}

	placeholders := tmpl.Placeholders()
	for _, name := range tmpl.RequiredVariables {
		if !slices.Contains(placeholders, name) {
			return nil, fmt.Errorf("template does not reference required variable %q", name)
		}
	}
	if strategy == parser.CommaList && !slices.Contains(placeholders, VarFormatInstructions) {
		return nil, fmt.Errorf("list template must reference {%s}", VarFormatInstructions)
	}

	return &Entry{
		Slug:     cfg.Slug,
		Name:     cfg.Name,
		Heading:  cfg.Heading,
		Group:    cfg.Group,
		Position: cfg.Position,
		Template: tmpl,
		Parser:   strategy,
		Source:   source,
	}, nil
}
