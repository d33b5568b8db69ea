package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/platform-cli/pkg/config"
	"github.com/DrSkyle/platform-cli/pkg/engine"
	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
	"github.com/DrSkyle/platform-cli/pkg/engine/report"
	"github.com/DrSkyle/platform-cli/pkg/tui"
	"github.com/DrSkyle/platform-cli/pkg/version"
)

// Streams are the process standard streams.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// app holds the state shared by one command tree.
type app struct {
	v          *viper.Viper
	cfgFile    string
	streams    Streams
	printer    *report.Printer
	engineOpts []engine.Option
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, s Streams, opts ...engine.Option) int {
	root := NewRootCmd(s, opts...)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	p := report.NewPrinter(s.Out)
	if errors.Is(err, errs.ErrAborted) {
		p.Warn("%s", err)
	} else {
		p.Error("%s", err)
	}
	return errs.ExitCode(err)
}

// NewRootCmd builds the command tree. Engine options are appended to the ones every
// workflow gets, which lets tests inject SDK clients.
func NewRootCmd(s Streams, opts ...engine.Option) *cobra.Command {
	a := &app{
		v:          viper.New(),
		streams:    s,
		printer:    report.NewPrinter(s.Out),
		engineOpts: opts,
	}

	rootCmd := &cobra.Command{
		Use:   version.AppName,
		Short: "Provision and manage tagged EC2, S3 and Route53 resources",
		Long: `platform-cli - Self-service AWS provisioning

Every resource it creates is tagged CreatedBy=platform-cli and Owner=<you>.
Only resources carrying those tags are listed or modified.`,
		Version:           version.Current,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.initConfig() },
	}
	rootCmd.SetIn(s.In)
	rootCmd.SetOut(s.Out)
	rootCmd.SetErr(s.ErrOut)
	rootCmd.SetGlobalNormalizationFunc(underscoreToDash)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default ~/.platform-cli.yaml)")
	pf.String("region", "", "AWS Region (default us-east-1)")
	pf.String("profile", "", "AWS shared config profile")
	pf.String("endpoint-url", "", "Override the AWS endpoint, e.g. LocalStack")
	pf.String("owner", "", "Owner tag value (default: caller identity name)")
	pf.String("rules", "", "YAML file of CEL guard rules")
	pf.BoolP("verbose", "v", false, "Log every AWS API call")
	pf.Bool("json-logs", false, "Write logs as JSON")
	pf.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces")

	for key, flag := range map[string]string{
		"region":        "region",
		"profile":       "profile",
		"endpoint_url":  "endpoint-url",
		"owner":         "owner",
		"rules":         "rules",
		"verbose":       "verbose",
		"json_logs":     "json-logs",
		"otel_endpoint": "otel-endpoint",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})

	rootCmd.AddCommand(
		newComputeCmd(a),
		newStorageCmd(a),
		newDNSCmd(a),
		newPermissionsCmd(a),
	)
	return rootCmd
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix("PLATFORM_CLI")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return errs.Validation("Cannot read config file %s: %v", a.cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".platform-cli.yaml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	a.v.SetConfigFile(path)
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		return errs.Validation("Cannot read config file %s: %v", path, err)
	}
	return nil
}

// run loads the configuration, builds an engine and executes fn as one traced workflow.
func (a *app) run(cmd *cobra.Command, name string, fn func(ctx context.Context, eng *engine.Engine) error) error {
	ctx := cmd.Context()

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	opts := append([]engine.Option{
		engine.WithLogOutput(a.streams.ErrOut),
		engine.WithConfirmer(tui.Confirmer(a.streams.In, a.streams.Out)),
	}, a.engineOpts...)

	eng, err := engine.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(context.WithoutCancel(ctx)); err != nil {
			eng.Logger.Debug("Telemetry shutdown failed", "error", err)
		}
	}()

	return eng.Run(ctx, name, func(ctx context.Context) error {
		return fn(ctx, eng)
	})
}

func underscoreToDash(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func renderHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	r := lipgloss.NewRenderer(out)

	titleStyle := r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := r.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("PLATFORM-CLI %s", version.Current)))
	fmt.Fprintln(out, cmd.Short)

	fmt.Fprintln(out, titleStyle.Render("USAGE"))
	fmt.Fprintf(out, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(out, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(out, "  %-16s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(out)
	}

	if cmd.Example != "" {
		fmt.Fprintln(out, titleStyle.Render("EXAMPLES"))
		fmt.Fprintln(out, cmd.Example)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(out, flagStyle.Render(output))
	})
	fmt.Fprintln(out)
}
