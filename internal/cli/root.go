// Package cli は管理用コマンド blogctl を提供します。
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/storage"
)

type storeOpener func(ctx context.Context, cfg *config.Config, log logging.Logger) (*storage.Stores, error)

type runtime struct {
	cfg  *config.Config
	log  logging.Logger
	open storeOpener
}

// NewRootCommand は blogctl のルートコマンドを作成します。
func NewRootCommand() *cobra.Command {
	return newRootCommand(config.Load, storage.Open)
}

func newRootCommand(load func() (*config.Config, error), open storeOpener) *cobra.Command {
	rt := &runtime{open: open}

	root := &cobra.Command{
		Use:          "blogctl",
		Short:        "webblog の管理用 CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}

	root.AddCommand(newMigrateCommand(rt))
	root.AddCommand(newDigestCommand())
	root.AddCommand(newUserCommand(rt))
	return root
}

// withStores はストレージを開いて fn を実行し、最後に閉じます。
func (rt *runtime) withStores(ctx context.Context, fn func(*storage.Stores) error) error {
	s, err := rt.open(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			rt.log.Warn(ctx, "failed to close storage", "error", cerr)
		}
	}()
	return fn(s)
}
