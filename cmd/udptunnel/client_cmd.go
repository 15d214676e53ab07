package main

import (
	"udptunnel/internal/client"
	"udptunnel/internal/flog"

	"github.com/spf13/cobra"
)

var clientFlags flagOverrides

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Run the client-side forwarder",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConf("client", &clientFlags)
		if err != nil {
			return err
		}
		startLogging(c)
		ctx := contextWithSignals()
		if err := client.Run(ctx, c); err != nil {
			flog.Fatalf("client: %v", err)
		}
		return nil
	},
}

func init() {
	addCommonFlags(clientCmd, &clientFlags)
}
