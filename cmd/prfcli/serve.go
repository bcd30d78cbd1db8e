package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prfcli/internal/app"
)

func newServeCmd(env *runtimeEnv) *cobra.Command {
	var (
		table string
		port  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over an exported cleaned table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				env.cfg.Server.Port = port
				if err := env.cfg.Validate(); err != nil {
					return err
				}
			}
			a, err := app.NewApplication(cmd.Context(), env.cfg, env.paths, table, env.metrics, env.logger)
			if err != nil {
				return err
			}
			titleColor.Fprintf(cmd.OutOrStdout(), "dashboard on http://localhost:%d", env.cfg.Server.Port)
			fmt.Fprintf(cmd.OutOrStdout(), " (%d accidents)\n", a.Dashboard.Rows())
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "cleaned table to serve (default: the configured checkpoint)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: server.port)")
	return cmd
}
