// Package resolver orchestrates upstream fetches into cacheable documents:
// player and next payloads for videos, browse payloads for playlists, and
// the boot-time import of local playlist files.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/yaytapi/yaytapi/internal/cache"
	"github.com/yaytapi/yaytapi/internal/innertube"
	"github.com/yaytapi/yaytapi/internal/playerjs"
	"github.com/yaytapi/yaytapi/internal/settings"
)

const (
	playerCollection        = "player"
	nextCollection          = "next"
	playlistCollection      = "playlist"
	localPlaylistCollection = "local-playlist"
)

// Upstream is the slice of the innertube client the resolver consumes.
type Upstream interface {
	playerjs.ScriptSource
	FetchPlayer(ctx context.Context, videoID string, sigTimestamp int, clientCtx innertube.ClientContext, lang string) (json.RawMessage, error)
	FetchNext(ctx context.Context, videoID string, clientCtx innertube.ClientContext, lang string) (json.RawMessage, error)
	FetchBrowse(ctx context.Context, continuation string, clientCtx innertube.ClientContext, lang string) (json.RawMessage, error)
	FetchPlaylist(ctx context.Context, playlistID string, clientCtx innertube.ClientContext, lang string) (json.RawMessage, error)
}

// Resolver resolves videos and playlists through the cache. Concurrent
// requests for the same uncached key are coalesced per cache key.
type Resolver struct {
	upstream Upstream
	scripts  *playerjs.Manager
	store    cache.Store
	settings *settings.AppSettings
	group    singleflight.Group
}

func New(upstream Upstream, scripts *playerjs.Manager, store cache.Store, s *settings.AppSettings) *Resolver {
	return &Resolver{
		upstream: upstream,
		scripts:  scripts,
		store:    store,
		settings: s,
	}
}

// Scripts exposes the player-script manager for handlers that pin a script
// generation explicitly.
func (r *Resolver) Scripts() *playerjs.Manager { return r.scripts }

// Store exposes the underlying cache for targeted invalidation.
func (r *Resolver) Store() cache.Store { return r.store }

// PlayerCacheKey is the cache key of a resolved player document. The local
// flag is part of the key because it changes the URL shape.
func PlayerCacheKey(videoID, lang string, local bool) string {
	return fmt.Sprintf("%s-%s-%t", videoID, lang, local)
}

// ResolvePlayer returns the rewritten player document for a video.
func (r *Resolver) ResolvePlayer(ctx context.Context, videoID, lang string, local bool) (map[string]any, error) {
	return r.resolvePlayer(ctx, videoID, lang, local, r.settings.CacheTimeout)
}

// ResolvePlayerTTL is ResolvePlayer with a cache TTL override in seconds.
// The local playlist import passes settings.InfiniteCacheTimeout.
func (r *Resolver) ResolvePlayerTTL(ctx context.Context, videoID, lang string, local bool, ttl uint64) (map[string]any, error) {
	return r.resolvePlayer(ctx, videoID, lang, local, ttl)
}

func (r *Resolver) resolvePlayer(ctx context.Context, videoID, lang string, local bool, ttl uint64) (map[string]any, error) {
	key := PlayerCacheKey(videoID, lang, local)
	doc, err, _ := r.group.Do(playerCollection+"/"+key, func() (any, error) {
		if cached, ok := cache.GetFreshTTL(ctx, r.store, playerCollection, key, r.settings, ttl); ok {
			var doc map[string]any
			if json.Unmarshal(cached, &doc) == nil {
				return doc, nil
			}
		}
		return r.fetchAndRewritePlayer(ctx, videoID, lang, local, key)
	})
	if err != nil {
		return nil, err
	}
	return doc.(map[string]any), nil
}

func (r *Resolver) fetchAndRewritePlayer(ctx context.Context, videoID, lang string, local bool, key string) (map[string]any, error) {
	script, sigTimestamp, scriptID, err := r.scripts.CurrentScript(ctx, r.settings)
	if err != nil {
		return nil, err
	}

	clientCtx := innertube.WebContext
	if r.settings.UseAndroidEndpoint {
		clientCtx = innertube.AndroidContext
	}
	raw, err := r.upstream.FetchPlayer(ctx, videoID, sigTimestamp, clientCtx, lang)
	if err != nil {
		if errors.Is(err, innertube.ErrFailedToSerialize) {
			return nil, ErrFailedToSerializePlayer
		}
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrFailedToSerializePlayer
	}

	switch status(doc) {
	case "LOGIN_REQUIRED":
		return nil, ErrLoginRequired
	case "ERROR":
		return nil, ErrResponseUnplayable
	}

	if err := r.rewriteStreamURLs(doc, videoID, lang, local, script, scriptID); err != nil {
		return nil, err
	}

	cache.Stamp(doc)
	if r.settings.CacheRequests {
		if encoded, err := json.Marshal(doc); err == nil {
			r.store.Put(ctx, playerCollection, key, encoded)
		}
	}
	return doc, nil
}

func status(doc map[string]any) string {
	s, _ := dig(doc, "playabilityStatus", "status").(string)
	return s
}

// rewriteStreamURLs applies one of three rewrite modes to every stream
// entry: decipher now, defer to /decipher_stream, or host-split proxy
// rewrite for pre-signed URLs.
func (r *Resolver) rewriteStreamURLs(doc map[string]any, videoID, lang string, local bool, script, scriptID string) error {
	formats := digEntries(doc, "formats")
	adaptive := digEntries(doc, "adaptiveFormats")
	all := append(append([]map[string]any{}, formats...), adaptive...)
	if len(all) == 0 {
		return nil
	}

	// need_decipher looks at the first entry of whichever list is
	// populated; mixed payloads do not occur upstream.
	probe := formats
	if len(probe) == 0 {
		probe = adaptive
	}
	_, hasURL := probe[0]["url"].(string)

	localOut := local && r.settings.EnableLocalStreaming

	if !hasURL {
		if r.settings.PreDecipherStreams {
			return r.decipherNow(all, script)
		}
		for _, entry := range all {
			sc, _ := entry["signatureCipher"].(string)
			if sc == "" {
				continue
			}
			// hl rides along so a stale-signature probe can invalidate
			// the player entry the link came from.
			entry["url"] = fmt.Sprintf("%s/decipher_stream?signature_cipher=%s&player_js_id=%s&video_id=%s&hl=%s&local=%t",
				r.settings.BaseURL(), url.QueryEscape(sc), scriptID, videoID, url.QueryEscape(lang), localOut)
		}
		return nil
	}

	for _, entry := range all {
		u, _ := entry["url"].(string)
		if u == "" {
			continue
		}
		entry["url"] = RewriteOriginURL(u, r.settings.BaseURL(), localOut)
	}
	return nil
}

func (r *Resolver) decipherNow(entries []map[string]any, script string) error {
	ciphers := make([]string, len(entries))
	for i, entry := range entries {
		ciphers[i], _ = entry["signatureCipher"].(string)
	}
	resolved, err := playerjs.NewDecipherer(script).DecipherStreams(ciphers)
	if err != nil {
		return &DecipherError{Text: err.Error()}
	}
	for i, entry := range entries {
		if resolved[i] != "" {
			entry["url"] = resolved[i]
		}
	}
	return nil
}

// RewriteOriginURL splits a googlevideo origin URL into host and
// path-and-query and points it at the gateway, carrying the origin host as
// a query parameter for /videoplayback to restore.
func RewriteOriginURL(origin, baseURL string, local bool) string {
	const marker = "googlevideo.com"
	idx := strings.Index(origin, marker)
	if idx < 0 {
		return origin
	}
	host := origin[:idx]
	if schemeEnd := strings.Index(host, "://"); schemeEnd >= 0 {
		host = host[schemeEnd+3:]
	}
	host += marker
	pathAndQuery := origin[idx+len(marker):]
	return baseURL + pathAndQuery + "&host=" + url.QueryEscape(host) + "&local=" + strconv.FormatBool(local)
}

// ResolveNext returns the raw next document for a video, cache-first.
func (r *Resolver) ResolveNext(ctx context.Context, videoID, lang string) (map[string]any, error) {
	key := videoID + "-" + lang
	doc, err, _ := r.group.Do(nextCollection+"/"+key, func() (any, error) {
		if cached, ok := cache.GetFresh(ctx, r.store, nextCollection, key, r.settings); ok {
			var doc map[string]any
			if json.Unmarshal(cached, &doc) == nil {
				return doc, nil
			}
		}
		raw, err := r.upstream.FetchNext(ctx, videoID, innertube.WebContext, lang)
		if err != nil {
			return nil, err
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("next response not decodable: %w", err)
		}
		cache.Stamp(doc)
		if r.settings.CacheRequests {
			if encoded, err := json.Marshal(doc); err == nil {
				r.store.Put(ctx, nextCollection, key, encoded)
			}
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return doc.(map[string]any), nil
}

// InvalidatePlayer drops the cached player documents for a video in both
// local variants. /decipher_stream calls this after a 403 probe.
func (r *Resolver) InvalidatePlayer(ctx context.Context, videoID, lang string) {
	r.store.Delete(ctx, playerCollection, PlayerCacheKey(videoID, lang, false))
	r.store.Delete(ctx, playerCollection, PlayerCacheKey(videoID, lang, true))
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

func digEntries(doc map[string]any, list string) []map[string]any {
	raw, _ := dig(doc, "streamingData", list).([]any)
	entries := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			entries = append(entries, m)
		}
	}
	return entries
}
