package cmd

import (
	"os"

	"github.com/spf13/viper"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bandpress",
	Short: "A small blog and band catalog web application",
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("app", "", "application to run: blog or catalog (env: APP)")
	err := viper.BindPFlag("app", rootCmd.PersistentFlags().Lookup("app"))
	if err != nil {
		return
	}
}
