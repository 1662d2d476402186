package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer a.close()
			a.log.Info("schema up to date", zap.String("driver", a.cfg.DB.Driver))
			return nil
		},
	}
}
