package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ytget/anime-downloader/internal/config"
	"github.com/ytget/anime-downloader/internal/download"
	"github.com/ytget/anime-downloader/internal/logging"
	"github.com/ytget/anime-downloader/internal/platform"
	"github.com/ytget/anime-downloader/internal/provider"
	"github.com/ytget/anime-downloader/internal/relay"
	"github.com/ytget/anime-downloader/internal/session"
	"github.com/ytget/anime-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.anime-downloader"
	AppName = "Anime Downloader"

	WindowWidth  = 960
	WindowHeight = 680
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "anime-downloader",
		Short:         "Search, browse and download anime episodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	config.RegisterFlags(rootCmd.Flags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", AppName, version)
		},
	})

	return rootCmd
}

func run(cfg *config.Config) error {
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info().
		Str("version", version).
		Str("config_dir", cfg.ConfigDir).
		Str("log_file", cfg.LogFile).
		Msg("starting")

	catalog := provider.NewAllAnime(cfg.ProviderOptions(), logger)
	downloader := download.NewService(download.NewYTDLP(cfg.YTDLPPath), logger)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	ensureDownloadDir(settings.GetDownloadDirectory(), logger)

	controller := session.NewController(catalog, downloader, relay.NewFyne(), session.Options{
		MaxAttempts: settings.GetMaxAttempts(),
	}, logger)
	ui.NewRootUI(myWindow, myApp, controller, settings, logger)

	myWindow.ShowAndRun()

	logger.Info().Int("in_flight", controller.Dispatcher().InFlight()).Msg("stopped")
	return nil
}

func ensureDownloadDir(dir string, logger zerolog.Logger) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("failed to ensure downloads dir")
	}
}
