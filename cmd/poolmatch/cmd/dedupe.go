package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/poolmatch"
	"github.com/agentstation/poolmatch/internal/cmd/output"
	"github.com/agentstation/poolmatch/internal/config"
	"github.com/agentstation/poolmatch/internal/roster"
	"github.com/agentstation/poolmatch/pkg/dedupe"
	"github.com/agentstation/poolmatch/pkg/errors"
	"github.com/agentstation/poolmatch/pkg/logging"
)

var dedupeOutPath string

// dedupeCmd represents the dedupe command.
var dedupeCmd = &cobra.Command{
	Use:   "dedupe <roster>",
	Short: "Detect duplicate records within one source collection",
	Long: `Dedupe groups records that share the same normalized name, birthdate and
gender, keeping the record with the lowest identifier in each group as
the survivor. The report is a dry run: nothing is removed unless --out
names a file to write the cleaned roster to.

Examples:
  poolmatch dedupe entries.yaml
  poolmatch dedupe entries.yaml -o yaml
  poolmatch dedupe entries.yaml --out cleaned.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	dedupeCmd.Flags().StringVar(&dedupeOutPath, "out", "", "write the collapsed roster to this file")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	logger := logging.Default()

	records, skipped, err := roster.Load(args[0])
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logger.Warn().Str("skip", s.String()).Msg("Roster record skipped")
	}

	reconciler, err := poolmatch.New(poolmatch.WithLogger(logger))
	if err != nil {
		return err
	}

	report, err := reconciler.Dedupe(cmd.Context(), records)
	if err != nil {
		return err
	}

	if dedupeOutPath != "" {
		cleaned := dedupe.Apply(records, report)
		data, err := yaml.Marshal(roster.File{Athletes: cleaned})
		if err != nil {
			return errors.WrapParse("yaml", dedupeOutPath, err)
		}
		if err := os.WriteFile(dedupeOutPath, data, 0o644); err != nil {
			return errors.WrapIO("write", dedupeOutPath, err)
		}
		logger.Info().
			Str("path", dedupeOutPath).
			Int("kept", len(cleaned)).
			Int("removed", report.Duplicates()).
			Msg("Collapsed roster written")
	}

	return renderDedupeReport(report)
}

func renderDedupeReport(report *dedupe.Report) error {
	format, err := output.ParseFormat(viper.GetString(config.KeyOutput))
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format)

	if format != output.FormatText {
		return formatter.Format(os.Stdout, report)
	}

	data := output.Data{
		Headers: []string{"GROUP", "SURVIVOR", "REMOVED", "SIZE"},
	}
	for _, g := range report.Groups {
		data.Rows = append(data.Rows, []string{
			g.Key.String(),
			strconv.FormatInt(g.SurvivorID, 10),
			fmt.Sprintf("%v", g.RemovedIDs),
			strconv.Itoa(g.Size()),
		})
	}
	if err := formatter.Format(os.Stdout, data); err != nil {
		return err
	}
	fmt.Printf("%d records scanned, %d duplicate groups, %d records marked for removal\n",
		report.Scanned, len(report.Groups), report.Duplicates())
	return nil
}
