package api

import (
	"net/http"

	"github.com/yaytapi/yaytapi/internal/metrics"
	"github.com/yaytapi/yaytapi/internal/playerjs"
	"github.com/yaytapi/yaytapi/internal/resolver"
)

// handleDecipherStream resolves a deferred stream link: it pins the script
// generation that produced the cipher, deciphers, probes the result and
// redirects. A 403 probe invalidates the cached player document so the next
// video request deciphers against the current generation.
func (s *Server) handleDecipherStream(w http.ResponseWriter, r *http.Request) {
	if !s.settings.DecipherStreams {
		writeError(w, http.StatusForbidden, "Deciphering streams is disabled", "")
		return
	}

	query := r.URL.Query()
	signatureCipher := query.Get("signature_cipher")
	scriptID := query.Get("player_js_id")
	videoID := query.Get("video_id")
	local := query.Get("local") == "true"

	if err := playerjs.RejectSuspiciousCipher(signatureCipher); err != nil {
		writeError(w, http.StatusBadRequest, "Refusing to execute potentially malicious payload", "")
		return
	}

	script, err := s.resolver.Scripts().ScriptByID(r.Context(), scriptID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch player.js", err.Error())
		return
	}
	streamURL, err := playerjs.NewDecipherer(script).DecipherStream(signatureCipher)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decipher stream", err.Error())
		return
	}

	// A 403 on the probe means the deciphered signature is stale for the
	// current upstream generation.
	if probe, err := http.NewRequestWithContext(r.Context(), http.MethodHead, streamURL, nil); err == nil {
		metrics.UpstreamCalls.WithLabelValues("stream_probe").Inc()
		if resp, err := s.probeClient.Do(probe); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusForbidden {
				s.resolver.InvalidatePlayer(r.Context(), videoID, langParam(r))
			}
		}
	}

	if local && s.settings.EnableLocalStreaming {
		streamURL = resolver.RewriteOriginURL(streamURL, s.settings.BaseURL(), true)
	}
	http.Redirect(w, r, streamURL, http.StatusFound)
}
