// Command isisconv inspects and converts isis values and raw data files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/config"
	"github.com/isis-group/isis-sub000/pkg/logger"
)

var version = "0.1.0"

// app carries the resolved configuration to the subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), cfg: config.Default()}
	a.v.SetEnvPrefix("ISIS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "isisconv",
		Short: "Convert isis values and raw data files",
		Long: `isisconv exposes the isis type layer on the command line: parse values
of any registered kind, convert them, compute scalings and convert raw data
files between element kinds, byte orders and compressions.

Every flag can also be set through the environment, e.g. ISIS_LOG_LEVEL=debug
or ISIS_RAW_BYTE_ORDER=big.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals
			if a.cfg.Conversion.Metrics {
				return dumpMetrics(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-encoding", "", "log encoding (console or json)")
	pf.Bool("metrics", false, "print conversion metrics to stderr when done")
	pf.String("scaling", "", "scaling policy (noscale, autoscale, noupscale, upscale)")
	a.bind(pf, "config", "config")
	a.bind(pf, "log.level", "log-level")
	a.bind(pf, "log.encoding", "log-encoding")
	a.bind(pf, "conversion.metrics", "metrics")
	a.bind(pf, "conversion.scaling", "scaling")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "isisconv v%s\n", version)
				fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
				fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			},
		},
		a.typesCommand(),
		a.convertCommand(),
		a.scalingCommand(),
		a.rawCommand(),
	)
	return root
}

// bind ties a viper key to a flag. BindPFlag only fails for a nil flag.
func (a *app) bind(fs *pflag.FlagSet, key, flag string) {
	_ = a.v.BindPFlag(key, fs.Lookup(flag))
}

// setup resolves the configuration: defaults, then the config file, then
// environment and flags.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	if path := a.v.GetString("config"); path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	a.override("log.level", &a.cfg.Log.Level)
	a.override("log.encoding", &a.cfg.Log.Encoding)
	a.override("conversion.scaling", &a.cfg.Conversion.Scaling)
	a.override("raw.compression", &a.cfg.Raw.Compression)
	a.override("raw.level", &a.cfg.Raw.Level)
	a.override("raw.byte_order", &a.cfg.Raw.ByteOrder)
	if a.v.IsSet("conversion.metrics") {
		a.cfg.Conversion.Metrics = a.v.GetBool("conversion.metrics")
	}
	if a.v.IsSet("raw.use_mmap") {
		a.cfg.Raw.UseMmap = a.v.GetBool("raw.use_mmap")
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.New(a.cfg.Log)
	if err != nil {
		return err
	}
	logger.ReplaceGlobal(l)
	logger.Debug("configuration resolved", zap.Any("config", a.cfg))
	return nil
}

func (a *app) override(key string, dst *string) {
	if a.v.IsSet(key) {
		if s := a.v.GetString(key); s != "" {
			*dst = s
		}
	}
}

func dumpMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "isis_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
