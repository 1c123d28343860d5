// Package api is the HTTP surface of the gateway: the Invidious-compatible
// JSON routes, the stream and thumbnail proxies, and the embedded home page.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yaytapi/yaytapi/internal/log"
	"github.com/yaytapi/yaytapi/internal/resolver"
	"github.com/yaytapi/yaytapi/internal/settings"
)

// Server wires the resolvers into route handlers.
type Server struct {
	settings *settings.AppSettings
	resolver *resolver.Resolver
	// probeClient issues the /decipher_stream HEAD probe and the
	// thumbnail proxy fetches.
	probeClient *http.Client
}

func NewServer(s *settings.AppSettings, r *resolver.Resolver) *Server {
	return &Server{
		settings:    s,
		resolver:    r,
		probeClient: http.DefaultClient,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	if s.settings.EnableAccessLogger {
		r.Use(accessLogger(log.WithComponent("http")))
	}
	r.Use(recordDuration)
	r.Use(limitConcurrency(s.settings.Workers))
	if s.settings.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}))
	}

	r.Get("/api/v1/stats", s.handleStats)
	r.Get("/api/v1/videos/{videoID}", s.handleVideo)
	r.Get("/api/v1/playlists/{playlistID}", s.handlePlaylist)
	r.Get("/latest_version", s.handleLatestVersion)
	r.Get("/videoplayback", s.handleVideoplayback)
	r.Head("/videoplayback", s.handleVideoplayback)
	r.Get("/decipher_stream", s.handleDecipherStream)
	r.Get("/vi/{videoID}/{fileName}", s.handleVideoThumbnail)
	r.Get("/ggpht/*", s.handleGgpht)
	r.Get("/static/*", s.handleStatic)
	r.Get("/default_user.jpg", s.handleDefaultUser)
	r.Get("/", s.handleHome)
	r.Get("/watch", s.handleHome)
	r.Get("/playlist", s.handleHome)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("The requested path '%s' was not found on this server.", r.URL.Path), "")
	})
	return r
}

// ListenAndServe runs the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.settings.IPAddress, s.settings.Port)
	logger := log.WithComponent("http")
	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.Router())
}
