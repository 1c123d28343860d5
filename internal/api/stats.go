package api

import (
	"embed"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/yaytapi/yaytapi/internal/version"
)

//go:embed static
var staticFS embed.FS

type softwareInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Branch  string `json:"branch"`
}

// settingsSnapshot is the opt-in view of the configuration published by
// /api/v1/stats.
type settingsSnapshot struct {
	CorsEnabled            bool     `json:"cors_enabled"`
	LocalStreamingEnabled  bool     `json:"local_streaming_enabled"`
	DecipherStreamsEnabled bool     `json:"decipher_streams_enabled"`
	InnertubeEndpointsUsed []string `json:"innertube_endpoints_used"`
	AllowNullKeysInOutput  bool     `json:"allow_null_keys_in_output"`
}

type statsResponse struct {
	Version  string            `json:"version"`
	Software softwareInfo      `json:"software"`
	Settings *settingsSnapshot `json:"yaytapi_settings,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Version: version.Version,
		Software: softwareInfo{
			Name:    "yaytapi",
			Version: version.Commit,
			Branch:  version.Branch,
		},
	}
	if s.settings.PublishSettingsInStats {
		endpoints := []string{"Web"}
		if s.settings.UseAndroidEndpoint {
			endpoints = append(endpoints, "Android")
		}
		resp.Settings = &settingsSnapshot{
			CorsEnabled:            s.settings.EnableCORS,
			LocalStreamingEnabled:  s.settings.EnableLocalStreaming,
			DecipherStreamsEnabled: s.settings.DecipherStreams,
			InnertubeEndpointsUsed: endpoints,
			AllowNullKeysInOutput:  s.settings.RetainNullKeys,
		}
	}
	writeJSON(w, http.StatusOK, resp, isPretty(r))
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/home.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "home page unavailable", "")
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write(page)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	data, err := staticFS.ReadFile(path.Join("static", path.Clean("/"+name)))
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found", "")
		return
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "text/html"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (s *Server) handleDefaultUser(w http.ResponseWriter, _ *http.Request) {
	data, err := staticFS.ReadFile("static/default_user.jpg")
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found", "")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}
