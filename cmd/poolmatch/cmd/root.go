// Package cmd implements the poolmatch command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/poolmatch/internal/config"
	"github.com/agentstation/poolmatch/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
	// BuiltBy is the build system identifier.
	BuiltBy = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "poolmatch",
	Short: "Athlete identity reconciliation CLI",
	Long: `Poolmatch reconciles athlete records arriving from meet entry files,
club uploads and federation exports against a canonical athlete pool.

Records are matched on normalized names, birthdates and gender; duplicate
records within a single collection can be detected and collapsed. All
matching is deterministic: the same inputs always produce the same report.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date, builtBy string) {
	Version = version
	Commit = commit
	Date = date
	BuiltBy = builtBy

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./poolmatch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json, yaml)")

	if err := viper.BindPFlag(config.KeyOutput, rootCmd.PersistentFlags().Lookup("output")); err != nil {
		panic(fmt.Sprintf("Failed to bind output flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	loadEnvFiles()

	config.Init()
	if err := config.LoadFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	settings := config.Load()
	level := settings.LogLevel
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "error"
	}
	logging.Configure(&logging.Config{
		Level:      level,
		Format:     settings.LogFormat,
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	})
}

// loadEnvFiles loads .env files into the environment before Viper binds
// environment variables. .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Overload(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}
