package main

import (
	"udptunnel/internal/flog"
	"udptunnel/internal/server"

	"github.com/spf13/cobra"
)

var serverFlags flagOverrides

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the server-side forwarder",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConf("server", &serverFlags)
		if err != nil {
			return err
		}
		startLogging(c)
		ctx := contextWithSignals()
		if err := server.Run(ctx, c); err != nil {
			flog.Fatalf("server: %v", err)
		}
		return nil
	},
}

func init() {
	addCommonFlags(serverCmd, &serverFlags)
}
