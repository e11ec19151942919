package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

const (
	BinaryName  = "mentalpoker"
	EnvPrefix   = "MENTALPOKER"
	DefaultHome = ".mentalpoker"

	flagHome      = "home"
	flagSeed      = "seed"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

// appConfig is resolved once per invocation from flags, MENTALPOKER_*
// environment variables and an optional <home>/config file, in that order of
// precedence.
type appConfig struct {
	Home   string
	Seed   string
	Params types.Params
	Logger log.Logger
}

// Source returns the randomness for this invocation: a deterministic stream
// when --seed is set, the OS CSPRNG otherwise.
func (c *appConfig) Source() (io.Reader, error) {
	if c.Seed == "" {
		return numtheory.SecureSource(), nil
	}
	return numtheory.NewHashSource([]byte(c.Seed))
}

// NewRootCmd creates the root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	cfg := &appConfig{Logger: log.NewNopLogger()}

	rootCmd := &cobra.Command{
		Use:           BinaryName,
		Short:         "Mental poker shuffles, masked card matrices and commitments",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd, cfg)
		},
	}

	defaults := types.DefaultParams()
	pf := rootCmd.PersistentFlags()
	pf.String(flagHome, DefaultHome, "directory holding session.json and an optional config file")
	pf.String(flagSeed, "", "seed a deterministic random stream (reproducible runs, not secure)")
	pf.String(flagLogLevel, "info", "log level (debug|info|warn|error)")
	pf.String(flagLogFormat, "plain", "log format (plain|json)")
	pf.Int("field-bytes", defaults.FieldBytes, "byte size of the shuffle field prime")
	pf.Int("commit-field-bytes", defaults.CommitFieldBytes, "byte size of commitment primes")
	pf.Int("max-prime-candidates", defaults.MaxPrimeCandidates, "cap on candidates tried per prime search")
	pf.Int("max-inverse-retries", defaults.MaxInverseRetries, "cap on redraws for invertible values")
	pf.Int("max-setup-attempts", defaults.MaxSetupAttempts, "cap on fresh fields tried by setup")

	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(
		newSetupCmd(cfg),
		newShuffleCmd(cfg),
		newPracticalCmd(cfg),
		newEncryptCmd(cfg),
		newCommitCmd(cfg),
		newVerifyCmd(cfg),
		newBenchCmd(cfg),
	)
	return rootCmd
}

func loadConfig(v *viper.Viper, cmd *cobra.Command, cfg *appConfig) error {
	cfg.Home = v.GetString(flagHome)
	cfg.Seed = v.GetString(flagSeed)

	v.SetConfigName("config")
	v.AddConfigPath(cfg.Home)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	params := types.DefaultParams()
	if err := v.Unmarshal(&params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	cfg.Params = params

	logger, err := newLogger(cmd.ErrOrStderr(), v.GetString(flagLogLevel), v.GetString(flagLogFormat))
	if err != nil {
		return err
	}
	cfg.Logger = logger.With("module", BinaryName, "cmd", cmd.Name())
	return nil
}

func newLogger(w io.Writer, level, format string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", flagLogLevel, level, err)
	}
	opts := []log.Option{log.LevelOption(lvl), log.ColorOption(false)}
	switch format {
	case "plain":
	case "json":
		opts = append(opts, log.OutputJSONOption())
	default:
		return nil, fmt.Errorf("invalid --%s %q (want plain|json)", flagLogFormat, format)
	}
	return log.NewLogger(w, opts...), nil
}
