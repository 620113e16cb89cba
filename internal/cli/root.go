package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
)

// NewRootCmd creates the root command for the gateway
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gateway",
		Short: "gateway - authenticated edge proxy for the affiliate dashboard",
		Long: `gateway sits between the affiliate dashboard and the backend API.

It exchanges the browser's session cookie for a short-lived signed bearer
token, validates proxied request paths, and forwards requests to the backend
with the minted identity attached. Cookies never reach the backend; the
backend stays the final authority on authorization.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: ./configs/gateway.yaml)")

	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
