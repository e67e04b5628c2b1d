// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/config"
	"github.com/naka-gawa/github-recap/internal/logging"
)

// cfg holds the validated configuration, loaded before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "github-recap",
	Short: "A CLI tool to render a GitHub year-in-review recap.",
	Long: `github-recap renders a pre-computed GitHub "year in review" recap document
as an HTML report and captures its cards as shareable PNG images.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(viper.New(), configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ./.github-recap.yaml)")
}

// newLogger builds the JSON logger honouring the verbose flag.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logging.New(verbose)
}

func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}

// passthrough returns the persistent flags a child serve process must inherit.
func passthrough(cmd *cobra.Command) []string {
	var args []string
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		args = append(args, "--verbose")
	}
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		args = append(args, fmt.Sprintf("--config=%s", configFile))
	}
	return args
}
