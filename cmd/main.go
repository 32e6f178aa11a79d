package main

import (
	"context"
	"os"

	"github.com/desertthunder/medley/internal/services"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotify services.PlaylistSource
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(
			config.Credentials.Spotify.ClientID,
			config.Credentials.Spotify.ClientSecret,
		); err == nil {
			spotify = svc
		} else {
			logger.Warn("spotify service unavailable", "error", err)
		}
	}

	var searcher services.VideoSearcher
	if svc, err := services.NewYouTubeService(config.Credentials.YouTube.APIKey); err == nil {
		searcher = svc
	} else {
		logger.Warn("youtube search unavailable", "error", err)
	}

	ytmusic := services.NewYTMusicService(
		config.Credentials.YouTube.ProxyURL,
		config.Credentials.YouTube.AuthFile,
	)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Spotify:  spotify,
		Searcher: searcher,
		Sink:     ytmusic,
		YTMusic:  ytmusic,
		Logger:   logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "medley",
		Usage:    "Convert Spotify playlists to YouTube Music",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
