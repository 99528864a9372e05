// Command tempo-playlist runs the tempo playlist generator web application
// and a small CLI for resolving tempos without a browser session.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/reedham/go-tempo-playlist/internal/config"
	"github.com/reedham/go-tempo-playlist/internal/db"
	"github.com/reedham/go-tempo-playlist/internal/lastfm"
	"github.com/reedham/go-tempo-playlist/internal/llm"
	"github.com/reedham/go-tempo-playlist/internal/spotify"
	"github.com/reedham/go-tempo-playlist/internal/tempo"
	"github.com/reedham/go-tempo-playlist/internal/web"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	app := &cli.Command{
		Name:    "tempo-playlist",
		Usage:   "Generate tempo-matched Spotify playlists from a reference song",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Commands: []*cli.Command{
			serveCommand(logger),
			detectCommand(logger),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

func serveCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web application",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			tags, cleanup, err := buildTagFetcher(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			server := web.NewServer(web.ServerConfig{
				Addr:          cfg.Server.Addr,
				ClientID:      cfg.Spotify.ClientID,
				ClientSecret:  cfg.Spotify.ClientSecret,
				RedirectURI:   cfg.Spotify.RedirectURI,
				AllowedOrigin: cfg.Server.AllowedOrigin,
				Tags:          tags,
				Completer:     buildCompleter(cfg),
				Logger:        logger,
			})

			return server.Run()
		},
	}
}

func detectCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Resolve a song's tempo from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "Song title", Required: true},
			&cli.StringFlag{Name: "artist", Usage: "Artist name", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// The client-credentials grant covers search and analysis
			// without a user login.
			ccfg := &clientcredentials.Config{
				ClientID:     cfg.Spotify.ClientID,
				ClientSecret: cfg.Spotify.ClientSecret,
				TokenURL:     spotifyauth.TokenURL,
			}
			token, err := ccfg.Token(ctx)
			if err != nil {
				return fmt.Errorf("authenticating with Spotify: %w", err)
			}
			client := spotify.New(spotifyapi.New(spotifyauth.New().Client(ctx, token)))

			tags, cleanup, err := buildTagFetcher(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			resolver := tempo.NewResolver(logger,
				tempo.DefaultAdapters(client, buildCompleter(cfg), tags)...)

			est := resolver.Resolve(ctx, cmd.String("title"), cmd.String("artist"))

			fmt.Printf("BPM:        %d\n", est.BPM)
			fmt.Printf("Source:     %s\n", est.Source)
			if est.Confidence > 0 {
				fmt.Printf("Confidence: %.1f\n", est.Confidence)
			}
			if est.Genre != "" {
				fmt.Printf("Genre:      %s\n", est.Genre)
			}
			return nil
		},
	}
}

// buildTagFetcher wires the Last.fm client, optionally backed by the
// PostgreSQL tag cache. Returns a nil fetcher when no API key is set.
func buildTagFetcher(ctx context.Context, cfg *config.Config, logger *log.Logger) (tempo.TagFetcher, func(), error) {
	noop := func() {}

	if cfg.LastFM.APIKey == "" {
		logger.Warn("LASTFM_API_KEY not set, tag heuristic disabled")
		return nil, noop, nil
	}

	client := lastfm.New(cfg.LastFM.APIKey)
	if cfg.Database.URL == "" {
		return client, noop, nil
	}

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, noop, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, noop, err
	}

	return lastfm.NewCachedFetcher(database.Tags(), client, logger), database.Close, nil
}

// buildCompleter wires the LLM client, or nil when no API key is set.
func buildCompleter(cfg *config.Config) tempo.TextCompleter {
	if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		return nil
	}
	return llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
}
