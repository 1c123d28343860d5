// Package playerjs tracks the upstream player script generation and applies
// its signature cipher routine to stream URLs. The script source, its id and
// the extracted signature timestamp are cached as one logical unit; the
// three entries always describe the same generation.
package playerjs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/cache"
	"github.com/yaytapi/yaytapi/internal/log"
	"github.com/yaytapi/yaytapi/internal/settings"
)

const (
	scriptCollection = "player"
	scriptIDKey      = "player.js-id"
	sigTimestampKey  = "signature_timestamp"
)

var signatureTimestampPattern = regexp.MustCompile(`(?:signatureTimestamp|sts)\s*[:=]\s*(\d+)`)

// scriptKey is the cache key holding the JS source of one generation.
func scriptKey(scriptID string) string {
	return "player.js-" + scriptID
}

// SignatureTimestampError reports a player script whose signature timestamp
// could not be parsed.
type SignatureTimestampError struct {
	Inner error
}

func (e *SignatureTimestampError) Error() string {
	return fmt.Sprintf("signature timestamp not found: %v", e.Inner)
}

func (e *SignatureTimestampError) Unwrap() error { return e.Inner }

// ScriptSource abstracts the upstream fetches the manager needs.
type ScriptSource interface {
	FetchPlayerJSID(ctx context.Context) (string, error)
	FetchPlayerJS(ctx context.Context, playerJSID string) (string, error)
}

// Manager resolves the current (script, signature timestamp, id) triple.
type Manager struct {
	source ScriptSource
	store  cache.Store
}

func NewManager(source ScriptSource, store cache.Store) *Manager {
	return &Manager{source: source, store: store}
}

// ExtractSignatureTimestamp pulls the integer signature timestamp out of a
// player script.
func ExtractSignatureTimestamp(script string) (int, error) {
	m := signatureTimestampPattern.FindStringSubmatch(script)
	if len(m) < 2 {
		return 0, &SignatureTimestampError{Inner: errors.New("no signatureTimestamp marker in script")}
	}
	ts, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &SignatureTimestampError{Inner: err}
	}
	return ts, nil
}

// CurrentScript returns the current player script generation, rotating the
// cached triple when the upstream id has changed. Concurrent rotations may
// fetch redundantly; the writes are idempotent because the upstream returns
// the same id.
func (m *Manager) CurrentScript(ctx context.Context, s *settings.AppSettings) (script string, sigTimestamp int, scriptID string, err error) {
	scriptID, err = m.source.FetchPlayerJSID(ctx)
	if err != nil {
		return "", 0, "", err
	}

	dirty := true
	if cached, ok := cache.GetFresh(ctx, m.store, scriptCollection, scriptIDKey, s); ok {
		var previousID string
		if json.Unmarshal(cached, &previousID) == nil && previousID == scriptID {
			dirty = false
		}
	}

	if !dirty {
		script, sigTimestamp, err = m.loadCached(ctx, scriptID, s)
		if err == nil {
			return script, sigTimestamp, scriptID, nil
		}
		// A half-missing generation falls through to a refetch.
		logger := log.WithComponent("playerjs")
		logger.Warn().Err(err).Str("id", scriptID).
			Msg("cached player script incomplete, refetching")
	}

	script, err = m.source.FetchPlayerJS(ctx, scriptID)
	if err != nil {
		return "", 0, "", err
	}
	sigTimestamp, err = ExtractSignatureTimestamp(script)
	if err != nil {
		return "", 0, "", err
	}
	m.rotate(ctx, scriptID, script, sigTimestamp)
	return script, sigTimestamp, scriptID, nil
}

// ScriptByID loads a pinned script generation without touching the canonical
// current-generation entries. The /decipher_stream handler uses this to pin
// the exact generation that produced a cached stream URL.
func (m *Manager) ScriptByID(ctx context.Context, scriptID string) (string, error) {
	if cached, ok := m.store.Get(ctx, scriptCollection, scriptKey(scriptID)); ok {
		var script string
		if json.Unmarshal(cached, &script) == nil && script != "" {
			return script, nil
		}
	}
	script, err := m.source.FetchPlayerJS(ctx, scriptID)
	if err != nil {
		return "", err
	}
	m.putString(ctx, scriptKey(scriptID), script)
	return script, nil
}

func (m *Manager) loadCached(ctx context.Context, scriptID string, s *settings.AppSettings) (string, int, error) {
	rawScript, ok := cache.GetFresh(ctx, m.store, scriptCollection, scriptKey(scriptID), s)
	if !ok {
		return "", 0, errors.New("script source missing from cache")
	}
	var script string
	if err := json.Unmarshal(rawScript, &script); err != nil || script == "" {
		return "", 0, errors.New("cached script source unreadable")
	}
	rawTS, ok := cache.GetFresh(ctx, m.store, scriptCollection, sigTimestampKey, s)
	if !ok {
		return "", 0, errors.New("signature timestamp missing from cache")
	}
	var ts int
	if err := json.Unmarshal(rawTS, &ts); err != nil {
		return "", 0, errors.New("cached signature timestamp unreadable")
	}
	return script, ts, nil
}

// rotate replaces the three-entry generation in one logical write.
func (m *Manager) rotate(ctx context.Context, scriptID, script string, sigTimestamp int) {
	m.store.Delete(ctx, scriptCollection, scriptIDKey)
	m.store.Delete(ctx, scriptCollection, scriptKey(scriptID))
	m.store.Delete(ctx, scriptCollection, sigTimestampKey)
	m.putString(ctx, scriptIDKey, scriptID)
	m.putString(ctx, scriptKey(scriptID), script)
	if encoded, err := json.Marshal(sigTimestamp); err == nil {
		m.store.Put(ctx, scriptCollection, sigTimestampKey, encoded)
	}
}

func (m *Manager) putString(ctx context.Context, key, value string) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.store.Put(ctx, scriptCollection, key, encoded)
}
