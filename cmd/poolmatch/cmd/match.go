package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/poolmatch"
	"github.com/agentstation/poolmatch/internal/cmd/output"
	"github.com/agentstation/poolmatch/internal/config"
	"github.com/agentstation/poolmatch/internal/roster"
	"github.com/agentstation/poolmatch/pkg/logging"
	matchpkg "github.com/agentstation/poolmatch/pkg/match"
)

var (
	matchPoolPath string
	matchSavePath string
	matchApply    bool
)

// matchCmd represents the match command.
var matchCmd = &cobra.Command{
	Use:   "match <roster>",
	Short: "Match a roster of athlete records against the canonical pool",
	Long: `Match runs one batch matching pass: every record in the roster file is
compared against the canonical pool and classified as matched, unmatched
or ambiguous. The pool is never modified during the pass.

With --apply, the computed alias additions are committed to the pool
afterwards (and unmatched records promoted when --promote is set); use
--save to write the updated pool back to disk.

Examples:
  poolmatch match entries.yaml --pool pool.yaml
  poolmatch match entries.yaml --pool pool.yaml --floor 5 -o json
  poolmatch match entries.yaml --pool pool.yaml --apply --promote --save pool.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchPoolPath, "pool", "", "canonical pool file (required)")
	matchCmd.Flags().Int("floor", 0, "minimum accepted match score")
	matchCmd.Flags().Int("parallel", 0, "worker goroutines for the pass")
	matchCmd.Flags().Bool("promote", false, "promote unmatched records when applying")
	matchCmd.Flags().BoolVar(&matchApply, "apply", false, "commit alias additions to the pool")
	matchCmd.Flags().StringVar(&matchSavePath, "save", "", "write the updated pool to this file after applying")
	_ = matchCmd.MarkFlagRequired("pool")

	cobra.CheckErr(viper.BindPFlag(config.KeyFloor, matchCmd.Flags().Lookup("floor")))
	cobra.CheckErr(viper.BindPFlag(config.KeyParallelism, matchCmd.Flags().Lookup("parallel")))
	cobra.CheckErr(viper.BindPFlag(config.KeyPromote, matchCmd.Flags().Lookup("promote")))
}

func runMatch(cmd *cobra.Command, args []string) error {
	settings := config.Load()
	logger := logging.Default()

	pool, err := roster.LoadPool(matchPoolPath)
	if err != nil {
		return err
	}

	queries, skipped, err := roster.Load(args[0])
	if err != nil {
		return err
	}
	for _, s := range skipped {
		logger.Warn().Str("skip", s.String()).Msg("Roster record skipped")
	}

	opts := []poolmatch.Option{
		poolmatch.WithPromotion(settings.Promote),
		poolmatch.WithLogger(logger),
	}
	if settings.Floor > 0 {
		opts = append(opts, poolmatch.WithFloor(settings.Floor))
	}
	if settings.Parallelism > 0 {
		opts = append(opts, poolmatch.WithParallelism(settings.Parallelism))
	}

	reconciler, err := poolmatch.New(opts...)
	if err != nil {
		return err
	}

	result, err := reconciler.Match(cmd.Context(), queries, pool)
	if err != nil {
		return err
	}

	if matchApply {
		report, err := reconciler.Apply(cmd.Context(), result, queries, pool)
		if err != nil {
			return err
		}
		logger.Info().
			Int("aliases_added", report.AliasesAdded).
			Int("promoted", len(report.Promoted)).
			Int("conflicts", len(report.Conflicts)).
			Msg("Match pass applied")
		for _, conflict := range report.Conflicts {
			logger.Warn().Err(conflict).Msg("Apply conflict")
		}
		if matchSavePath != "" {
			if err := roster.SavePool(matchSavePath, pool); err != nil {
				return err
			}
		}
	}

	return renderMatchResult(result)
}

func renderMatchResult(result *matchpkg.Result) error {
	format, err := output.ParseFormat(viper.GetString(config.KeyOutput))
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format)

	if format != output.FormatText {
		return formatter.Format(os.Stdout, result)
	}

	data := output.Data{
		Headers: []string{"QUERY", "OUTCOME", "ENTITY", "SCORE", "CANDIDATES", "NOTES"},
	}
	for _, r := range result.Records {
		entity := ""
		if r.MatchedID != 0 {
			entity = strconv.FormatInt(r.MatchedID, 10)
		}
		notes := ""
		switch {
		case len(r.TiedIDs) > 0:
			notes = fmt.Sprintf("tied: %v", r.TiedIDs)
		case r.Signals.Transposed:
			notes = "transposed birthdate"
		}
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(r.QueryID, 10),
			string(r.Outcome),
			entity,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Candidates),
			notes,
		})
	}
	if err := formatter.Format(os.Stdout, data); err != nil {
		return err
	}
	fmt.Println(result.Summary())
	return nil
}
