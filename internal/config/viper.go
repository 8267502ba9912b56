// Package config wires Viper-backed configuration for the poolmatch
// commands. Settings resolve in the usual order: explicit flags, then
// environment variables with the POOLMATCH_ prefix, then an optional
// poolmatch.yaml file, then defaults.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentstation/poolmatch/pkg/errors"
	"github.com/agentstation/poolmatch/pkg/scoring"
)

// Configuration keys.
const (
	KeyFloor       = "match.floor"
	KeyParallelism = "match.parallelism"
	KeyPromote     = "match.promote"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyOutput      = "output.format"
)

// Settings is the resolved command configuration.
type Settings struct {
	Floor       int
	Parallelism int
	Promote     bool
	LogLevel    string
	LogFormat   string
	Output      string
}

// Init registers defaults and environment bindings. Call once before
// reading settings.
func Init() {
	viper.SetEnvPrefix("POOLMATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyFloor, scoring.DefaultFloor)
	viper.SetDefault(KeyParallelism, 1)
	viper.SetDefault(KeyPromote, false)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "console")
	viper.SetDefault(KeyOutput, "text")
}

// LoadFile reads an optional configuration file. A missing file is not
// an error; a malformed one is.
func LoadFile(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("poolmatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			return nil
		}
		if path == "" && os.IsNotExist(err) {
			return nil
		}
		return errors.WrapParse("yaml", viper.ConfigFileUsed(), err)
	}
	return nil
}

// Load returns the resolved settings.
func Load() Settings {
	return Settings{
		Floor:       viper.GetInt(KeyFloor),
		Parallelism: viper.GetInt(KeyParallelism),
		Promote:     viper.GetBool(KeyPromote),
		LogLevel:    viper.GetString(KeyLogLevel),
		LogFormat:   viper.GetString(KeyLogFormat),
		Output:      viper.GetString(KeyOutput),
	}
}
