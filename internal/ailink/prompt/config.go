package prompt

// Config describes a prompt definition loaded from YAML frontmatter.
type Config struct {
	Slug           string    `yaml:"slug" json:"slug" validate:"required"`
	Name           string    `yaml:"name,omitempty" json:"name,omitempty"`
	Description    string    `yaml:"description,omitempty" json:"description,omitempty"`
	Heading        string    `yaml:"heading,omitempty" json:"heading,omitempty" validate:"required_with=Position"`
	Group          string    `yaml:"group" json:"group" validate:"required"`
	Position       int       `yaml:"position,omitempty" json:"position,omitempty" validate:"gte=0"`
	OutputParser   string    `yaml:"output_parser,omitempty" json:"output_parser,omitempty" validate:"omitempty,oneof=identity comma_list"`
	Input          InputSpec `yaml:"input,omitempty" json:"input,omitempty"`
	SystemTemplate string    `yaml:"system_template,omitempty" json:"system_template,omitempty"`
	UserTemplate   string    `yaml:"user_template,omitempty" json:"user_template,omitempty" validate:"required"`
}

// InputSpec defines prompt input requirements.
type InputSpec struct {
	RequiredVariables []string `yaml:"required_variables,omitempty" json:"required_variables,omitempty" validate:"required,min=1,dive,required"`
}

// Groups and slugs referenced by the application.
const (
	GroupOverview = "overview"
	GroupTable    = "table"

	SlugMultiplesTable  = "multiples-table"
	SlugRiskTable       = "risk-table"
	SlugBarriersToEntry = "barriers-to-entry"
)

// Variable names bound by callers.
const (
	VarIndustryTitle      = "industry_title"
	VarMultiplesTable     = "multiples_table"
	VarRiskTable          = "risk_table"
	VarBarriersToEntry    = "barriers_to_entry"
	VarFormatInstructions = "format_instructions"
)
