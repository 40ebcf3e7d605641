package cmd

import (
	"fmt"

	"github.com/anoixa/bandpress/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bandpress %s\n", config.Version)
		fmt.Printf("commit:     %s\n", orNA(config.CommitHash))
		fmt.Printf("build time: %s\n", orNA(config.BuildTime))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
