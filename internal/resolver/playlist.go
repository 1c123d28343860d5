package resolver

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/cache"
	"github.com/yaytapi/yaytapi/internal/innertube"
)

// ErrPageOutOfRange rejects playlist pages below one.
var ErrPageOutOfRange = errors.New("Page must be greater than zero")

// ResolvePlaylist returns the raw browse document for the first page of a
// playlist. Handlers consult LocalPlaylist first; local entries are stored
// in final Invidious shape and never reach this path.
func (r *Resolver) ResolvePlaylist(ctx context.Context, playlistID, lang string) (map[string]any, error) {
	key := playlistID + "-" + lang
	return r.browseWithCache(ctx, key, func() (json.RawMessage, error) {
		raw, err := r.upstream.FetchPlaylist(ctx, playlistID, innertube.WebContext, lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToFetchPlaylist, err)
		}
		return raw, nil
	}, ErrFailedToParsePlaylist)
}

// ResolvePlaylistPage returns the browse document for one continuation page.
func (r *Resolver) ResolvePlaylistPage(ctx context.Context, playlistID, lang string, page int) (map[string]any, error) {
	if page < 1 {
		return nil, ErrPageOutOfRange
	}
	token, err := innertube.GeneratePlaylistContinuation(playlistID, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGenerateContinuation, err)
	}
	key := token + "-" + lang
	return r.browseWithCache(ctx, key, func() (json.RawMessage, error) {
		raw, err := r.upstream.FetchBrowse(ctx, token, innertube.WebContext, lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToFetchContinuation, err)
		}
		return raw, nil
	}, ErrFailedToParseContinuation)
}

func (r *Resolver) browseWithCache(ctx context.Context, key string, fetch func() (json.RawMessage, error), parseErr error) (map[string]any, error) {
	doc, err, _ := r.group.Do(playlistCollection+"/"+key, func() (any, error) {
		if cached, ok := cache.GetFresh(ctx, r.store, playlistCollection, key, r.settings); ok {
			var doc map[string]any
			if json.Unmarshal(cached, &doc) == nil {
				return doc, nil
			}
		}
		raw, err := fetch()
		if err != nil {
			return nil, err
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", parseErr, err)
		}
		cache.Stamp(doc)
		if r.settings.CacheRequests {
			if encoded, err := json.Marshal(doc); err == nil {
				r.store.Put(ctx, playlistCollection, key, encoded)
			}
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return doc.(map[string]any), nil
}

// LocalPlaylist reads a playlist imported at boot. Local entries never
// expire, and they are stored in final Invidious shape rather than as raw
// browse documents.
func (r *Resolver) LocalPlaylist(ctx context.Context, name string) (map[string]any, bool) {
	raw, ok := r.store.Get(ctx, localPlaylistCollection, name)
	if !ok {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return doc, true
}
