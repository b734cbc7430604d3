package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/ketiboldiais/amicus/pkg/ioctx"
	"github.com/ketiboldiais/amicus/pkg/rpc"
	"github.com/ketiboldiais/amicus/pkg/rune"
)

// Config holds the command-line configuration
type Config struct {
	Debug         bool
	NoColor       bool
	RPC           bool
	MaxIterations int
	DebugAddr     string
	File          string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "rune [flags] [file]",
		Short: "Rune language interpreter",
		Long: `Rune is a small scripting language with a built-in computer algebra system.
Numbers, fractions, vectors and matrices are first class, and quoted
'algebra strings' are symbolic expressions that can be simplified,
expanded and differentiated.`,
		Example: `  # Run a Rune script
  rune script.rune

  # Start interactive REPL
  rune

  # Serve JSON-RPC on stdin/stdout
  rune --rpc

  # Run with debug logging and an AST dump
  rune --debug script.rune`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stderr, cfg.Debug)
			if cfg.DebugAddr != "" {
				return setupDebugHandlers(cfg.DebugAddr)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.RPC {
				engineCfg, err := loadConfig(cmd, cfg, ".")
				if err != nil {
					return err
				}
				return rpc.Serve(cmd.Context(), engineCfg, os.Stdin, os.Stdout)
			}

			if len(args) == 1 {
				cfg.File = args[0]
				return run(cmd, cfg)
			}
			return runREPL(cmd, cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	flags.IntVar(&cfg.MaxIterations, "max-iterations", rune.DefaultMaxLoopIterations, "Maximum iterations of a single while loop")
	flags.StringVar(&cfg.DebugAddr, "debug-addr", "", "Serve pprof and expvar handlers on this address")
	rootCmd.Flags().BoolVar(&cfg.RPC, "rpc", false, "Serve JSON-RPC requests on stdin/stdout")

	rootCmd.AddCommand(
		tokensCmd(&cfg),
		astCmd(&cfg),
		checkCmd(&cfg),
		simplifyCmd(),
		deriveCmd(),
		expandCmd(),
		degCmd(),
	)

	ctx := ioctx.WithStreams(context.Background(), ioctx.Streams{
		Out: os.Stdout,
		Err: os.Stderr,
	})
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// loadConfig layers rune.toml (found from dir upwards), the environment and
// any explicitly set flags.
func loadConfig(cmd *cobra.Command, cfg Config, dir string) (rune.Config, error) {
	path, engineCfg, err := rune.FindConfig(dir)
	if err != nil {
		return engineCfg, err
	}
	if path != "" {
		slog.Debug("loaded config", "path", path)
	}

	engineCfg, err = rune.ApplyEnv(engineCfg)
	if err != nil {
		return engineCfg, err
	}

	if cmd.Flags().Changed("max-iterations") {
		if cfg.MaxIterations <= 0 {
			return engineCfg, fmt.Errorf("--max-iterations must be positive, got %d", cfg.MaxIterations)
		}
		engineCfg.MaxLoopIterations = cfg.MaxIterations
	}
	if cfg.Debug {
		engineCfg.Debug = true
	}
	return engineCfg, nil
}

func run(cmd *cobra.Command, cfg Config) error {
	ctx := cmd.Context()

	source, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.File, err)
	}

	engineCfg, err := loadConfig(cmd, cfg, filepath.Dir(cfg.File))
	if err != nil {
		return err
	}

	if engineCfg.Debug {
		if prog, err := rune.Parse(string(source)); err == nil {
			pretty.Println(prog)
		}
	}

	v, err := rune.New(engineCfg).Compile(ctx, string(source))
	if err != nil {
		return fmt.Errorf("%s", paint(cfg, rune.AsError(err).Format(cfg.File, string(source))))
	}

	slog.Debug("result", "type", v.Type(), "value", v.String())
	return nil
}
