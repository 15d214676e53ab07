// Command udptunnel runs either the client or server half of the UDP
// tunnel: a thin launcher that parses configuration and flags, then hands
// the resulting configuration and a cancellable context to the core
// packages. The core packages bind their own sockets from that
// configuration; no pre-bound socket is passed in.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
