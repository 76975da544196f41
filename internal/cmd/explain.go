package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/observability"
	"github.com/industrylens/industrylens/internal/output"
	"github.com/industrylens/industrylens/internal/tables"
)

// multiplesExample uses the multiples column names so it renders in layout order.
const multiplesExample = `[{"multiple":"EV/EBITDA","value":"12.3","industry_median":"10.1"}]`

var explainCmd = &cobra.Command{
	Use:   "explain <multiples|risk|barriers> [table-json]",
	Short: "Explain a financial table",
	Long: fmt.Sprintf(`Decode a table given as a JSON array of objects, reformat it and ask the
provider to explain it.

The table is read from the second argument, from --file, or from stdin when
neither is given:

  industrylens explain multiples '%s'
  industrylens explain risk --file risk.json
  cat barriers.json | industrylens explain barriers`, multiplesExample),
	Args: cobra.RangeArgs(1, 2),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().String("file", "", "read the table from a file")
	explainCmd.Flags().String("out", "", "write output to file (default stdout)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	kind, err := tables.ParseKind(args[0])
	if err != nil {
		return err
	}

	raw, err := readTableInput(cmd, args[1:])
	if err != nil {
		return err
	}
	// Malformed input is reported before config or provider problems.
	if _, err := tables.Decode(raw); err != nil {
		return err
	}

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

	observability.CLILogger.Debug("Running explanation",
		zap.String("kind", string(kind)),
		zap.Int("input_bytes", len(raw)),
	)

	result, err := analyzer.Explain(cmd.Context(), kind, raw)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatExplanation(result)
	if err != nil {
		return err
	}
	return writeOutput(cmd, rendered)
}

func readTableInput(cmd *cobra.Command, args []string) (string, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)

	switch {
	case path != "" && len(args) > 0:
		return "", fmt.Errorf("--file and an inline table are mutually exclusive")
	case len(args) > 0:
		return args[0], nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read table file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read table from stdin: %w", err)
		}
		return string(data), nil
	}
}
