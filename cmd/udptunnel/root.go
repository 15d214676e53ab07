package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"udptunnel/internal/conf"
	"udptunnel/internal/flog"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "udptunnel",
	Short: "Tunnel UDP datagrams over a single reliable connection",
}

func init() {
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(serverCmd)
}

// flagOverrides holds the CLI flags common to both subcommands.
type flagOverrides struct {
	configPath           string
	fromPort             int
	toPort               int
	disablePortRemapping bool
	logLevel             string
}

func addCommonFlags(cmd *cobra.Command, f *flagOverrides) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a YAML configuration file")
	cmd.Flags().IntVar(&f.fromPort, "from-port", 0, "override from_port")
	cmd.Flags().IntVar(&f.toPort, "to-port", 0, "override to_port")
	cmd.Flags().BoolVar(&f.disablePortRemapping, "disable-port-remapping", false, "override disable_port_remapping")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "override log.level")
}

// loadConf loads the config file named by f.configPath, checks it matches
// the subcommand's role, applies every flag given a non-zero value (true for
// --disable-port-remapping) over the loaded values, and re-validates the
// result. A flag set to its zero value leaves the loaded value unchanged.
func loadConf(role string, f *flagOverrides) (*conf.Conf, error) {
	if f.configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	c, err := conf.LoadFromFile(f.configPath)
	if err != nil {
		return nil, err
	}
	if c.Role != role {
		return nil, fmt.Errorf("config role %q does not match the %q subcommand", c.Role, role)
	}

	if f.fromPort != 0 {
		c.FromPort = f.fromPort
	}
	if f.toPort != 0 {
		c.ToPort = f.toPort
	}
	if f.disablePortRemapping {
		c.DisablePortRemapping = true
	}
	if f.logLevel != "" {
		c.Log.Level = f.logLevel
	}

	if err := c.Revalidate(); err != nil {
		return nil, err
	}
	return c, nil
}

// contextWithSignals returns a context cancelled on SIGINT/SIGTERM.
func contextWithSignals() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}

func startLogging(c *conf.Conf) {
	flog.SetLevel(flog.ParseLevel(c.Log.Level))
}
