// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

// Package cmd provides the root command for the casegen CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/casegen/casegen"
	configv0 "github.com/casegen/casegen/config/v0"
	"github.com/casegen/casegen/schema"
)

// NewRootCmd creates the root command for the casegen CLI.
func NewRootCmd() *cobra.Command {
	var (
		num        int
		seed       int64
		script     string
		timeout    time.Duration
		check      bool
		level      string
		ver        bool
		configPath string
	)

	var cfg *configv0.Config // cfg is not set via CLI flag

	// closure initializer
	loadConfig := func(cmd *cobra.Command) error {
		switch {
		case cmd.Flags().Changed("config"):
			f, err := os.Open(configPath)
			if err != nil {
				return fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()
			cfg, err = configv0.LoadConfig(f)
			if err != nil {
				return fmt.Errorf("failed to load config file: %w", err)
			}
		case os.Getenv("CASEGEN_CONFIG") != "":
			f, err := os.Open(os.Getenv("CASEGEN_CONFIG"))
			if err != nil {
				return fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()
			cfg, err = configv0.LoadConfig(f)
			if err != nil {
				return fmt.Errorf("failed to load config file: %w", err)
			}
		default:
			var err error
			cfg, err = configv0.LoadDefaultConfig()
			if err != nil {
				return err
			}
		}

		return nil
	}

	root := &cobra.Command{
		Use:   "casegen <schema>",
		Short: "Generate JSON instances from a JSON Schema",
		Long: `casegen loads a JSON Schema from a file or an inline literal, caps its
complexity so that generated instances stay small, and produces conforming
JSON instances. With --script, each instance is written to a case file and
handed to the script; a non-zero exit from the script fails the run.`,
		Example: `
casegen schema.json --num 10

casegen '{"type": "array", "items": {"type": "integer"}}' --seed 42

casegen schema.json --script ./check.sh --timeout 30s
`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			logger := log.FromContext(cmd.Context())
			logger.SetLevel(l)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if ver && len(args) == 0 {
				bi, ok := debug.ReadBuildInfo()
				if !ok {
					return fmt.Errorf("version information not available")
				}
				switch bi.Main.Path {
				case "github.com/casegen/casegen":
					fmt.Fprintln(os.Stdout, bi.Main.Version)
				default:
					for _, dep := range bi.Deps {
						if dep.Path == "github.com/casegen/casegen" {
							fmt.Fprintln(os.Stdout, dep.Version)
							break
						}
					}
				}
				return nil
			}

			if len(args) == 0 {
				return errors.New("requires a schema argument, a file path or an inline JSON literal")
			}

			// default < cfg < flags
			if !cmd.Flags().Changed("num") && cfg.Num > 0 {
				num = cfg.Num
			}
			if !cmd.Flags().Changed("timeout") && cfg.Timeout != "" {
				d, err := time.ParseDuration(cfg.Timeout)
				if err != nil {
					return err // config validates durations during loading, but leave in case a regression happens
				}
				timeout = d
			}
			if !cmd.Flags().Changed("check") {
				check = cfg.Check
			}

			s, err := schema.Load(ctx, afero.NewOsFs(), args[0])
			if err != nil {
				return err
			}

			opts := casegen.Options{
				Num:     num,
				Seed:    seed,
				Script:  script,
				Timeout: timeout,
				Check:   check,
				Out:     cmd.OutOrStdout(),
			}

			return casegen.Execute(ctx, opts, s)
		},
	}

	root.Flags().IntVarP(&num, "num", "n", configv0.DefaultNum, "Number of instances to generate")
	root.Flags().Int64Var(&seed, "seed", 0, "Generation seed, 0 means randomly seeded")
	root.Flags().StringVar(&script, "script", "", "Executable invoked with each case file as its sole argument")
	_ = root.MarkFlagFilename("script")
	root.Flags().DurationVarP(&timeout, "timeout", "t", configv0.DefaultTimeout, "Maximum time allowed per script invocation")
	root.Flags().BoolVar(&check, "check", false, "Validate every instance against the limited schema")
	root.Flags().StringVarP(&level, "log-level", "l", "info", "Set log level")
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{log.DebugLevel.String(), log.InfoLevel.String(), log.WarnLevel.String(), log.ErrorLevel.String(), log.FatalLevel.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")
	root.Flags().StringVar(&configPath, "config", "${HOME}/.casegen/config.yaml", "Path to casegen config file") // mirrors config.DefaultDirectory
	_ = root.MarkFlagFilename("config", "yaml", "yml")

	return root
}

// Main executes the root command for the casegen CLI.
//
// It returns 0 on success, 1 on failure and logs any errors.
func Main() int {
	cli := NewRootCmd()

	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	_, err := cli.ExecuteContextC(ctx)
	if err != nil {
		logger.Print("")

		var sErr *casegen.ScriptError
		if errors.As(err, &sErr) {
			logger.Error(sErr, "instance", sErr.Instance)
			if sErr.Stdout != "" {
				logger.Error("script stdout", "output", sErr.Stdout)
			}
			if sErr.Stderr != "" {
				logger.Error("script stderr", "output", sErr.Stderr)
			}
		} else {
			logger.Error(err)
		}
		return 1
	}
	return 0
}
