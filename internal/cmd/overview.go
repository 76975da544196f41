package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/observability"
	"github.com/industrylens/industrylens/internal/output"
)

var overviewCmd = &cobra.Command{
	Use:   "overview <industry title>",
	Short: "Answer the industry overview questions for one industry",
	Long: `Render every overview prompt for the given industry title, send them to
the provider and print the answers in registry order.

Multiple arguments are joined with spaces, so quoting is optional:

  industrylens overview electric vehicles
  industrylens overview "craft breweries" --format json --out breweries.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	overviewCmd.Flags().String("out", "", "write output to file (default stdout)")
}

func runOverview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}

	title := strings.Join(args, " ")
	observability.CLILogger.Debug("Running overview",
		zap.String("title", title),
		zap.String("model", analyzer.Model),
	)

	result, err := analyzer.Overview(cmd.Context(), title)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatOverview(result)
	if err != nil {
		return err
	}
	return writeOutput(cmd, rendered)
}
