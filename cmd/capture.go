package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/browser"
	"github.com/naka-gawa/github-recap/internal/capture"
	"github.com/naka-gawa/github-recap/internal/config"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Captures every dashboard card as a PNG image",
	Long: `Starts the asset server, opens report.html in a headless browser and writes
cards/card-NN.png plus a copy of the rendered report.html to the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCapture(cmd, cfg.Port, (*capture.Driver).Cards)
	},
}

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Captures the vertical story cards as PNG images",
	Long: `Starts the asset server, opens report-story.html in a 1080x1920 headless
browser and writes instagram/story-NN.png for every story card.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCapture(cmd, cfg.StoryPort, (*capture.Driver).Story)
	},
}

func init() {
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(storyCmd)
}

func runCapture(cmd *cobra.Command, port int, flow func(*capture.Driver, context.Context) (capture.Result, error)) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := capture.NewDriver(
		newServerLauncher(cmd, logger),
		browser.NewLauncher(cfg.Browser(), logger),
		afero.NewOsFs(),
		cfg.Capture(port),
		logger,
	)
	res, err := flow(driver, ctx)
	if err != nil {
		logger.Error("capture failed", zap.String("run", res.RunID), zap.Stringer("state", res.State), zap.Error(err))
		return err
	}
	return nil
}

func newServerLauncher(cmd *cobra.Command, logger *zap.Logger) capture.Launcher {
	if cfg.ServerMode == config.ModeInProcess {
		return &capture.InProcessLauncher{
			Fs:          afero.NewOsFs(),
			Root:        cfg.WebRoot,
			DefaultData: cfg.DataFile,
			Logger:      logger,
		}
	}
	return &capture.ProcessLauncher{
		Args:   append([]string{serveCmd.Name()}, passthrough(cmd)...),
		Logger: logger,
	}
}
