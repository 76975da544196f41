package cmd

import (
	"github.com/spf13/cobra"

	"github.com/industrylens/industrylens/internal/output"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the selectable models with token ceilings and prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		rendered, err := output.FormatModels(format, modelRows(cfg))
		if err != nil {
			return err
		}
		return writeOutput(cmd, rendered)
	},
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the registered prompts",
	Long:  "List the built-in prompts merged with any overrides from ailink.prompts_dir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		registry, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		group, _ := cmd.Flags().GetString("group")
		entries := registry.List()
		if group != "" {
			entries = registry.Group(group)
		}
		rendered, err := output.FormatPrompts(format, output.PromptRows(entries))
		if err != nil {
			return err
		}
		return writeOutput(cmd, rendered)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(promptsCmd)
	modelsCmd.Flags().String("out", "", "write output to file (default stdout)")
	promptsCmd.Flags().String("out", "", "write output to file (default stdout)")
	promptsCmd.Flags().String("group", "", "only list prompts in this group (overview, table)")
}
