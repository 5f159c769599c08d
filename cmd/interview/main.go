// Package main is the candidate-facing interview client: a login step that
// verifies interview access, and a terminal shell that runs the proctored
// AI-interview session against the recruiting backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "interview",
	Short: "TalentSift proctored interview client",
	Long: "Client for TalentSift AI interviews: verify your access code, then take the " +
		"timed, integrity-monitored interview session.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func main() {
	rootCmd.AddCommand(versionCmd, loginCmd, startCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
