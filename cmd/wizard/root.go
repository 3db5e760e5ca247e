package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"signup/internal/platform/logger"
	"signup/internal/registration/orchestrator"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/sink"
)

type rootOptions struct {
	viaCEPURL string
	timeout   time.Duration
	format    string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Interactive registration wizard",
		Long: `wizard walks through identity, address and contact details, filling the
address from the postal code where possible, and prints the completed
registration.

Flags may also come from $HOME/.signup-wizard.yaml or SIGNUP_WIZARD_* variables.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd, cfgFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFrom(v)
			if err != nil {
				return err
			}
			return runWizard(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.signup-wizard.yaml)")
	cmd.Flags().String("viacep-url", "https://viacep.com.br", "base URL of the postal code service")
	cmd.Flags().Duration("timeout", 5*time.Second, "postal code lookup timeout")
	cmd.Flags().String("format", formatJSON, "output format for the completed registration (json or yaml)")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug logging on stderr")
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers flags over environment over the optional config file.
func loadConfig(v *viper.Viper, cmd *cobra.Command, cfgFile string) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("SIGNUP_WIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".signup-wizard")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	slog.Debug("using config file", "file", v.ConfigFileUsed())
	return nil
}

func optionsFrom(v *viper.Viper) (*rootOptions, error) {
	opts := &rootOptions{
		viaCEPURL: v.GetString("viacep-url"),
		timeout:   v.GetDuration("timeout"),
		format:    strings.ToLower(v.GetString("format")),
		verbose:   v.GetBool("verbose"),
	}
	if opts.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	if opts.format != formatJSON && opts.format != formatYAML {
		return nil, fmt.Errorf("unsupported format %q", opts.format)
	}
	return opts, nil
}

func runWizard(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level)

	lookups := postalcode.NewViaCEPClient(postalcode.ViaCEPConfig{
		BaseURL: opts.viaCEPURL,
		Timeout: opts.timeout,
		Logger:  log,
	})
	wizard := orchestrator.New(lookups, sink.NewMemory(),
		orchestrator.WithLogger(log),
		orchestrator.WithLookupTimeout(opts.timeout),
	)

	r := &runner{
		wizard:     wizard,
		prompt:     huhPrompter{},
		out:        cmd.OutOrStdout(),
		format:     opts.format,
		lookupWait: opts.timeout + time.Second,
	}
	_, err := r.Run(ctx)
	switch {
	case errors.Is(err, huh.ErrUserAborted):
		fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
		return nil
	case errors.Is(err, errIncomplete):
		return fmt.Errorf("registration not submitted: %w", err)
	}
	return err
}
