package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yaytapi/yaytapi/internal/invidious"
)

func langParam(r *http.Request) string {
	if hl := r.URL.Query().Get("hl"); hl != "" {
		return hl
	}
	return "en"
}

func localParam(r *http.Request) bool {
	return r.URL.Query().Get("local") == "true"
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	lang := langParam(r)
	local := localParam(r)
	mask := invidious.ParseFieldsParam(r.URL.Query().Get("fields"))

	player, err := s.resolver.ResolvePlayer(r.Context(), videoID, lang, local)
	if err != nil {
		writePlayerError(w, err)
		return
	}

	fetchNext := func(ctx context.Context) (map[string]any, error) {
		return s.resolver.ResolveNext(ctx, videoID, lang)
	}
	doc, err := invidious.ProjectVideo(r.Context(), player, fetchNext, mask, invidious.ProjectOptions{
		Lang:            lang,
		RetainNullKeys:  s.settings.RetainNullKeys,
		SortToInvSchema: s.settings.SortToInvSchema,
		AttachInnertube: s.settings.ReturnInnertubeResponse,
	})
	if err != nil {
		writePlayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc, isPretty(r))
}

// handleLatestVersion redirects to the stream URL matching the requested
// itag, or lists the available itags on a miss.
func (s *Server) handleLatestVersion(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("id")
	itag := r.URL.Query().Get("itag")
	lang := langParam(r)
	local := localParam(r)

	player, err := s.resolver.ResolvePlayer(r.Context(), videoID, lang, local)
	if err != nil {
		writePlayerError(w, err)
		return
	}

	var available []string
	for _, list := range []string{"formats", "adaptiveFormats"} {
		entries, _ := dig(player, "streamingData", list).([]any)
		for _, item := range entries {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entryItag := fmt.Sprint(entry["itag"])
			if f, ok := entry["itag"].(float64); ok {
				entryItag = fmt.Sprintf("%d", int64(f))
			}
			if entryItag == itag {
				if u, ok := entry["url"].(string); ok && u != "" {
					http.Redirect(w, r, u, http.StatusFound)
					return
				}
			}
			available = append(available, entryItag)
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]any{
		"type":              "error",
		"message":           fmt.Sprintf("No streams found matching the given itag: %s", itag),
		"available_streams": available,
	}, false)
}

func dig(doc any, path ...string) any {
	current := doc
	for _, step := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[step]
	}
	return current
}
