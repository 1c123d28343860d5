package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yaytapi/yaytapi/internal/invidious"
)

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")
	lang := langParam(r)

	// Locally imported playlists are stored in final shape.
	if local, ok := s.resolver.LocalPlaylist(r.Context(), playlistID); ok {
		writeJSON(w, http.StatusOK, local, isPretty(r))
		return
	}

	var (
		browse map[string]any
		err    error
	)
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		page, parseErr := strconv.Atoi(pageParam)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Given page is not a number: %s", pageParam), "")
			return
		}
		if page < 1 {
			writeError(w, http.StatusBadRequest, "Page must be greater than zero", "")
			return
		}
		browse, err = s.resolver.ResolvePlaylistPage(r.Context(), playlistID, lang, page)
	} else {
		browse, err = s.resolver.ResolvePlaylist(r.Context(), playlistID, lang)
	}
	if err != nil {
		writePlaylistError(w, err)
		return
	}

	playlist, err := invidious.ParsePlaylist(browse, lang)
	if err != nil {
		writePlaylistError(w, err)
		return
	}
	if s.settings.ReturnInnertubeResponse {
		playlist.Set("innertube", browse)
	}
	writeJSON(w, http.StatusOK, playlist, isPretty(r))
}
