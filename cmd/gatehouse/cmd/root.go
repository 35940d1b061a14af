package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatehouse",
	Short: "Gatehouse is a self-hosted control-panel server",
	Long: `Gatehouse serves a self-hosted control panel behind a hardened
request-security layer: password login, in-memory sessions, CSRF
double-submit protection and per-client rate limiting.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
