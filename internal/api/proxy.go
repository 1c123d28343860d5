package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yaytapi/yaytapi/internal/log"
	"github.com/yaytapi/yaytapi/internal/metrics"
)

// strippedRequestHeaders never reach the origin.
var strippedRequestHeaders = []string{"Referrer", "Access-Control-Allow-Origin", "Connection"}

// handleVideoplayback proxies or redirects a stream request to the origin
// host carried in the host query parameter.
func (s *Server) handleVideoplayback(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		writeError(w, http.StatusBadRequest, "Missing host parameter", "")
		return
	}

	if r.URL.Query().Get("local") != "true" {
		http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusFound)
		return
	}
	if !s.settings.EnableLocalStreaming {
		writeError(w, http.StatusForbidden, "Local streaming is disabled", "")
		return
	}

	upstream, err := http.NewRequestWithContext(r.Context(), r.Method,
		"https://"+host+r.URL.RequestURI(), r.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unknown error", err.Error())
		return
	}
	copyHeaders(upstream.Header, r.Header)
	upstream.Header.Set("Access-Control-Allow-Origin", "*")

	metrics.UpstreamCalls.WithLabelValues("videoplayback").Inc()
	resp, err := s.probeClient.Do(upstream)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to reach origin", err.Error())
		return
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		if strings.EqualFold(name, "Content-Length") {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(resp.StatusCode)

	if r.Method == http.MethodHead {
		return
	}
	streamBody(w, resp.Body)
}

func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if isStrippedHeader(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func isStrippedHeader(name string) bool {
	for _, stripped := range strippedRequestHeaders {
		if strings.EqualFold(name, stripped) {
			return true
		}
	}
	return false
}

// streamBody copies the origin body chunk by chunk, flushing after each
// write so playback starts before the transfer completes. The copy stops
// when the client disconnects.
func streamBody(w http.ResponseWriter, body io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			return
		}
	}
}

func (s *Server) handleVideoThumbnail(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	fileName := chi.URLParam(r, "fileName")
	s.proxyImage(w, r, "https://i.ytimg.com/vi/"+videoID+"/"+fileName, "image/jpeg")
}

func (s *Server) handleGgpht(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	s.proxyImage(w, r, "https://yt3.ggpht.com/"+rest, "")
}

func (s *Server) proxyImage(w http.ResponseWriter, r *http.Request, origin, contentType string) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, origin, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unknown error", err.Error())
		return
	}
	metrics.UpstreamCalls.WithLabelValues("thumbnail").Inc()
	resp, err := s.probeClient.Do(req)
	if err != nil {
		logger := log.WithComponent("proxy")
		logger.Warn().Err(err).Str("origin", origin).Msg("thumbnail fetch failed")
		writeError(w, http.StatusBadGateway, "Failed to reach origin", "")
		return
	}
	defer resp.Body.Close()

	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(resp.StatusCode)
	streamBody(w, resp.Body)
}
