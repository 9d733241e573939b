package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/textcipher-go/internal/config"
	"github.com/textcipher-go/internal/dao"
	"github.com/textcipher-go/internal/engine"
	"github.com/textcipher-go/internal/storage"
)

type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCommand builds the textcipher command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "textcipher",
		Short:         "Rotation and XOR ciphers for text and files",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			setupLogging(cfg, cmd.ErrOrStderr())
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./config.yaml, ./configs/, ~/.textcipher/)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newCipherCommand(a, "encrypt"),
		newCipherCommand(a, "decrypt"),
		newHistoryCommand(a),
		newServeCommand(a),
		newTokenCommand(a),
	)
	return root
}

// Execute runs the root command with os.Args
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		root.PrintErrln("Error:", err)
	}
	return err
}

// openHistory opens the history store when enabled. A locked or broken
// store only disables recording for this run.
func (a *app) openHistory() (*dao.HistoryDAO, func()) {
	if !a.cfg.History.Enable {
		return nil, func() {}
	}
	store, err := storage.NewStore(a.cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("History unavailable, continuing without it")
		return nil, func() {}
	}
	log.Debug().Str("path", store.Path()).Msg("History store opened")
	return dao.NewHistoryDAO(store), func() { store.Close() }
}

func (a *app) newEngine(history *dao.HistoryDAO) *engine.Engine {
	opts := engine.Options{
		ChunkSize: a.cfg.Stream.ChunkSize,
		Atomic:    a.cfg.Stream.Atomic,
	}
	if history != nil {
		opts.History = history
	}
	return engine.New(opts)
}

func setupLogging(cfg *config.Config, out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if out == nil {
		out = os.Stderr
	}
	if cfg.Log.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
