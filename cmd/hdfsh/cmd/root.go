package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/opensandbox/hdfsh/internal/config"
	"github.com/opensandbox/hdfsh/internal/logging"
	"github.com/opensandbox/hdfsh/internal/metrics"
	"github.com/opensandbox/hdfsh/internal/shell"
	"github.com/opensandbox/hdfsh/internal/workdir"
	"github.com/opensandbox/hdfsh/pkg/client"
	"github.com/opensandbox/hdfsh/pkg/types"
)

var (
	configPath string
	logLevel   string
)

// application is everything a command needs, resolved from config.
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Recorder
	executor *shell.Executor
}

// appSlot carries the application through the command context. It starts
// empty and is filled by the first command that needs the remote
// filesystem, so an interactive session builds it once.
type appSlot struct {
	app *application
}

type appSlotKey struct{}

func withAppSlot(ctx context.Context) (context.Context, *appSlot) {
	slot := &appSlot{}
	return context.WithValue(ctx, appSlotKey{}, slot), slot
}

func slotFrom(ctx context.Context) *appSlot {
	slot, _ := ctx.Value(appSlotKey{}).(*appSlot)
	return slot
}

// appFrom returns the application set up for cmd by PersistentPreRunE.
func appFrom(cmd *cobra.Command) *application {
	if slot := slotFrom(commandContext(cmd)); slot != nil {
		return slot.app
	}
	return nil
}

// skipSetup marks commands that never touch the remote filesystem.
const skipSetup = "hdfsh/skip-setup"

var rootCmd = &cobra.Command{
	Use:   "hdfsh",
	Short: "hdfsh - a shell for HDFS",
	Long: `hdfsh runs filesystem commands against a remote HDFS namespace over WebHDFS.

The working directory persists between invocations, so
  hdfsh cd /data && hdfsh ls
behaves like a regular shell session. Run "hdfsh shell" for an interactive one.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsSetup(cmd) {
			return nil
		}
		ctx := commandContext(cmd)
		slot := slotFrom(ctx)
		if slot == nil {
			ctx, slot = withAppSlot(ctx)
			cmd.SetContext(ctx)
		}
		if slot.app != nil {
			return nil
		}
		a, err := newApplication()
		if err != nil {
			return err
		}
		slot.app = a
		return nil
	},
}

// ExecuteContext runs the root command and releases whatever it set up.
func ExecuteContext(ctx context.Context) error {
	ctx, slot := withAppSlot(ctx)
	err := rootCmd.ExecuteContext(ctx)
	if slot.app != nil {
		if err != nil {
			slot.app.logger.Debug("command failed",
				zap.Stringer("kind", types.KindOf(err)), zap.Error(err))
		}
		slot.app.close()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.ConfigPathEnv+" or "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
}

// needsSetup reports whether cmd talks to the remote filesystem. Help,
// completion scripts and version do not.
func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipSetup] == "true" {
			return false
		}
		switch c.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}

func newApplication() (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	invocation := uuid.NewString()
	logger = logger.With(zap.String("invocation", invocation))
	logger.Debug("config loaded",
		zap.String("file", cfg.File),
		zap.String("user", cfg.User),
		zap.Int("namenodes", len(cfg.Namenodes)))

	recorder := metrics.NewRecorder()

	namenodes := make([]string, len(cfg.Namenodes))
	for i, nn := range cfg.Namenodes {
		namenodes[i] = nn.HTTPAddr()
	}
	var proxyAddr string
	if cfg.Proxy != nil {
		proxyAddr = cfg.Proxy.Addr()
	}

	c, err := client.NewClient(client.Options{
		Namenodes: namenodes,
		User:      cfg.User,
		Proxy:     proxyAddr,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		RequestID: invocation,
		Logger:    logger.Named("webhdfs"),
		Metrics:   recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	store := workdir.NewStore(afero.NewOsFs(), cfg.WorkdirFile, cfg.User)

	return &application{
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
		executor: shell.NewExecutor(c, store,
			shell.WithLogger(logger),
			shell.WithDuConcurrency(cfg.DuConcurrency)),
	}, nil
}

// close flushes logs and writes the metrics textfile if one is configured.
func (a *application) close() {
	if a.cfg != nil && a.cfg.MetricsTextfile != "" && a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.logger.Warn("failed to write metrics textfile",
				zap.String("path", a.cfg.MetricsTextfile), zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resetCommands restores every flag in the tree to its default and drops
// the context cobra left on each command, so the next execution of the
// tree starts clean.
func resetCommands(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	c.SetContext(nil)
	for _, sub := range c.Commands() {
		resetCommands(sub)
	}
}
