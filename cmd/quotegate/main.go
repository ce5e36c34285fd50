package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "quotegate",
	Short: "quotegate - market data facade for NSE/BSE and mock symbols",
	Long: `quotegate serves quotes, price history, fundamentals and news over HTTP.
Symbols listed on NSE/BSE (.NS/.BO suffixes and index aliases) are answered
by the TrueData vendor; everything else is answered with synthetic data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
