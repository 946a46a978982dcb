// Package cli implements vaxtopctl, the maintenance tool for the local
// session and data store.
package cli

import (
	"context"
	"fmt"

	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/config"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/anonto42/vaxtop/backend/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// StoreOpener opens the store a command operates on. The command closes it.
type StoreOpener func(ctx context.Context, cfg *config.Config, log *zap.Logger) (kvstore.Store, error)

// Env carries what every subcommand needs.
type Env struct {
	Config *config.Config
	Logger *zap.Logger
	Open   StoreOpener
}

// NewRootCmd builds the command tree. A nil env loads configuration from the
// environment and opens the configured storage driver.
func NewRootCmd(env *Env) *cobra.Command {
	if env == nil {
		env = &Env{}
	}
	root := &cobra.Command{
		Use:          "vaxtopctl",
		Short:        "Inspect and maintain the vaxtop session store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.init(cmd)
		},
	}
	root.PersistentFlags().String("driver", "", "Storage driver override: memory | sqlite | postgres | mongo")
	root.PersistentFlags().String("namespace", "", "Storage key namespace override")
	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	root.AddCommand(NewDevicesCmd(env))
	root.AddCommand(NewSessionsCmd(env))
	root.AddCommand(NewExportCmd(env))
	root.AddCommand(NewImportCmd(env))
	root.AddCommand(NewClearCmd(env))
	return root
}

func (env *Env) init(cmd *cobra.Command) error {
	if env.Config == nil {
		env.Config = config.Load()
	}
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		env.Config.StorageDriver = driver
	}
	if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
		env.Config.StorageNamespace = ns
	}
	if env.Logger == nil {
		level := "warn"
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		l, err := logger.New(env.Config.Env, level)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		env.Logger = l
	}
	if env.Open == nil {
		env.Open = config.OpenStorage
	}
	return nil
}

// withStore opens the store, runs fn and closes the store again.
func (env *Env) withStore(ctx context.Context, fn func(kvstore.Store) error) error {
	store, err := env.Open(ctx, env.Config, env.Logger)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", env.Config.StorageDriver, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			env.Logger.Warn("closing storage failed", zap.Error(cerr))
		}
	}()
	return fn(store)
}

func (env *Env) repoOptions() []repositories.Option {
	return []repositories.Option{
		repositories.WithLogger(env.Logger),
		repositories.WithKeys(repositories.NewKeys(env.Config.StorageNamespace)),
	}
}
