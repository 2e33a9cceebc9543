package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigWorkers       = "workers"
	ConfigWorkerDepth   = "worker-depth"
	ConfigRerankDepth   = "rerank-depth"
	ConfigTransport     = "transport"
	ConfigNatsURL       = "nats-url"
	ConfigSubjectPrefix = "subject-prefix"
	ConfigColour        = "colour"
	ConfigEvaluator     = "evaluator"
	ConfigWeightsFile   = "weights-file"
	ConfigRefereeAddr   = "referee-addr"
	ConfigBotChannel    = "bot-channel"
	ConfigLogFile       = "log-file"
	ConfigDebug         = "debug"
	ConfigAutoplayDB    = "autoplay-db"
	ConfigConfigFile    = "config-file"
)

const (
	TransportLocal = "local"
	TransportNats  = "nats"
)

var ErrBadConfig = errors.New("bad configuration")

type Config struct {
	*viper.Viper
	args []string
}

// DefaultConfig returns a config with every default set and no other
// sources read. Handy for tests.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	setDefaults(c.Viper)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigWorkers, 3)
	v.SetDefault(ConfigWorkerDepth, 6)
	v.SetDefault(ConfigRerankDepth, 1)
	v.SetDefault(ConfigTransport, TransportLocal)
	v.SetDefault(ConfigNatsURL, "nats://127.0.0.1:4222")
	v.SetDefault(ConfigSubjectPrefix, "othello")
	v.SetDefault(ConfigColour, "black")
	v.SetDefault(ConfigEvaluator, "positional")
	v.SetDefault(ConfigWeightsFile, "")
	v.SetDefault(ConfigRefereeAddr, "")
	v.SetDefault(ConfigBotChannel, "")
	v.SetDefault(ConfigLogFile, "")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigAutoplayDB, "")
}

// Load reads, in increasing priority: defaults, an optional YAML config
// file, OTHELLO_* environment variables, then command-line flags.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("othello", pflag.ContinueOnError)
	fs.Int(ConfigWorkers, 3, "number of search workers")
	fs.Int(ConfigWorkerDepth, 6, "search depth on the workers, counting the root move")
	fs.Int(ConfigRerankDepth, 1, "plies the master searches past each worker candidate")
	fs.String(ConfigTransport, TransportLocal, "worker transport: local or nats")
	fs.String(ConfigNatsURL, "nats://127.0.0.1:4222", "NATS server URL")
	fs.String(ConfigSubjectPrefix, "othello", "prefix for NATS subjects")
	fs.String(ConfigColour, "black", "the colour this player plays")
	fs.String(ConfigEvaluator, "positional", "static evaluator: positional or disccount")
	fs.String(ConfigWeightsFile, "", "YAML file with an 8x8 positional weight table")
	fs.String(ConfigRefereeAddr, "", "host:port of the referee; stdin/stdout if empty")
	fs.String(ConfigBotChannel, "", "serve gen_move requests on this NATS subject instead of a referee")
	fs.String(ConfigLogFile, "", "write logs to this file instead of stderr")
	fs.Bool(ConfigDebug, false, "debug logging")
	fs.String(ConfigAutoplayDB, "", "sqlite file that self-play games are logged to")
	fs.String(ConfigConfigFile, "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("othello")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString(ConfigConfigFile); path != "" {
		c.SetConfigFile(path)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.GetInt(ConfigWorkers) < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrBadConfig, ConfigWorkers)
	}
	if c.GetInt(ConfigWorkerDepth) < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrBadConfig, ConfigWorkerDepth)
	}
	if c.GetInt(ConfigRerankDepth) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrBadConfig, ConfigRerankDepth)
	}
	switch c.GetString(ConfigTransport) {
	case TransportLocal, TransportNats:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrBadConfig, c.GetString(ConfigTransport))
	}
	return nil
}

// Args returns the command-line arguments left over after flags.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings returns every setting, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
