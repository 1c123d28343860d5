package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/api"
	"github.com/yaytapi/yaytapi/internal/cache"
	"github.com/yaytapi/yaytapi/internal/innertube"
	"github.com/yaytapi/yaytapi/internal/log"
	"github.com/yaytapi/yaytapi/internal/playerjs"
	"github.com/yaytapi/yaytapi/internal/resolver"
	"github.com/yaytapi/yaytapi/internal/settings"
)

func main() {
	s, err := settings.FromArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Configure(log.Config{})
	logger := log.WithComponent("main")

	if s.PrintConfig {
		pretty, err := json.MarshalIndent(&s, "", "  ")
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot encode configuration")
		}
		fmt.Println("config:")
		fmt.Println(string(pretty))
	}

	ctx := context.Background()
	store, err := cache.Open(ctx, &s)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open cache store")
	}
	defer store.Close()

	client := innertube.NewClient()
	scripts := playerjs.NewManager(client, store)
	res := resolver.New(client, scripts, store, &s)

	if s.PlaylistsPath != "" {
		logger.Info().Str("path", s.PlaylistsPath).Msg("loading custom playlists")
		res.ImportLocalPlaylists(ctx)
	}

	server := api.NewServer(&s, res)
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
