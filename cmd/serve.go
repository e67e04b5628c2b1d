package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-recap/internal/logging"
	"github.com/naka-gawa/github-recap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the web root and the rendered reports on 127.0.0.1",
	Long: `Serves the configured web root on 127.0.0.1:$PORT (default 4173).
report.html and report-story.html are rendered from the recap named by the
"data" query parameter. The capture commands start this command themselves.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := logging.NewConsole(verbose)
		if err != nil {
			return err
		}
		defer syncLogger(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(afero.NewOsFs(), cfg.Server(cfg.Port), logger)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
