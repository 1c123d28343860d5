package resolver

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/innertube"
	"github.com/yaytapi/yaytapi/internal/playerjs"
	"github.com/yaytapi/yaytapi/internal/settings"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]json.RawMessage)}
}

func (s *memStore) Get(_ context.Context, collection, key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[collection+"-"+key]
	return v, ok
}

func (s *memStore) Put(_ context.Context, collection, key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[collection+"-"+key] = value
}

func (s *memStore) Delete(_ context.Context, collection, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, collection+"-"+key)
}

func (s *memStore) Close() error { return nil }

type fakeUpstream struct {
	mu          sync.Mutex
	playerDoc   map[string]any
	nextDoc     map[string]any
	browseDoc   map[string]any
	playerCalls int
	nextCalls   int
	scriptCalls int
}

func (f *fakeUpstream) FetchPlayerJSID(context.Context) (string, error) {
	return "8e83b8a3", nil
}

func (f *fakeUpstream) FetchPlayerJS(context.Context, string) (string, error) {
	f.mu.Lock()
	f.scriptCalls++
	f.mu.Unlock()
	return "var config = {signatureTimestamp:19834};", nil
}

func (f *fakeUpstream) FetchPlayer(context.Context, string, int, innertube.ClientContext, string) (json.RawMessage, error) {
	f.mu.Lock()
	f.playerCalls++
	f.mu.Unlock()
	return json.Marshal(f.playerDoc)
}

func (f *fakeUpstream) FetchNext(context.Context, string, innertube.ClientContext, string) (json.RawMessage, error) {
	f.mu.Lock()
	f.nextCalls++
	f.mu.Unlock()
	return json.Marshal(f.nextDoc)
}

func (f *fakeUpstream) FetchBrowse(context.Context, string, innertube.ClientContext, string) (json.RawMessage, error) {
	return json.Marshal(f.browseDoc)
}

func (f *fakeUpstream) FetchPlaylist(context.Context, string, innertube.ClientContext, string) (json.RawMessage, error) {
	return json.Marshal(f.browseDoc)
}

func testSettings() *settings.AppSettings {
	return &settings.AppSettings{
		PublicURL:     "http://gw.example",
		CacheRequests: true,
		CacheTimeout:  settings.DefaultCacheTimeout,
	}
}

func newTestResolver(upstream *fakeUpstream, s *settings.AppSettings) (*Resolver, *memStore) {
	store := newMemStore()
	return New(upstream, playerjs.NewManager(upstream, store), store, s), store
}

func preSignedPlayer() map[string]any {
	return map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"videoDetails":      map[string]any{"videoId": "dQw4w9WgXcQ"},
		"streamingData": map[string]any{
			"formats": []any{
				map[string]any{
					"itag": float64(18),
					"url":  "https://rr4---sn-h0jeened.googlevideo.com/videoplayback?expire=1&sig=x",
				},
			},
			"adaptiveFormats": []any{
				map[string]any{
					"itag": float64(137),
					"url":  "https://rr4---sn-h0jeened.googlevideo.com/videoplayback?expire=2&sig=y",
				},
			},
		},
	}
}

func cipheredPlayer() map[string]any {
	return map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"videoDetails":      map[string]any{"videoId": "dQw4w9WgXcQ"},
		"streamingData": map[string]any{
			"formats": []any{
				map[string]any{
					"itag":            float64(18),
					"signatureCipher": "url=https%3A%2F%2Frr4.googlevideo.com%2Fvideoplayback%3Fexpire%3D1",
				},
			},
			"adaptiveFormats": []any{},
		},
	}
}

func streamURLs(doc map[string]any) []string {
	var urls []string
	for _, list := range []string{"formats", "adaptiveFormats"} {
		entries, _ := dig(doc, "streamingData", list).([]any)
		for _, entry := range entries {
			if u, ok := entry.(map[string]any)["url"].(string); ok {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

func TestResolvePlayerHostSplitRewrite(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: preSignedPlayer()}
	s := testSettings()
	s.EnableLocalStreaming = true
	r, _ := newTestResolver(upstream, s)

	doc, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	urls := streamURLs(doc)
	if len(urls) != 2 {
		t.Fatalf("got %d urls, want 2", len(urls))
	}
	for _, u := range urls {
		if !strings.HasPrefix(u, "http://gw.example/videoplayback?") {
			t.Errorf("url not gateway-relative: %s", u)
		}
		if !strings.Contains(u, "host=rr4---sn-h0jeened.googlevideo.com") {
			t.Errorf("url missing origin host: %s", u)
		}
		if !strings.Contains(u, "local=true") {
			t.Errorf("url missing local flag: %s", u)
		}
	}
}

func TestResolvePlayerLocalFlagRequiresStreamingEnabled(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: preSignedPlayer()}
	r, _ := newTestResolver(upstream, testSettings())

	doc, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, u := range streamURLs(doc) {
		if !strings.Contains(u, "local=false") {
			t.Errorf("local should be forced off when streaming is disabled: %s", u)
		}
	}
}

func TestResolvePlayerDecipherLazyLinks(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: cipheredPlayer()}
	r, _ := newTestResolver(upstream, testSettings())

	doc, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "de", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	urls := streamURLs(doc)
	if len(urls) != 1 {
		t.Fatalf("got %d urls, want 1", len(urls))
	}
	u := urls[0]
	for _, fragment := range []string{
		"http://gw.example/decipher_stream?signature_cipher=",
		"player_js_id=8e83b8a3",
		"video_id=dQw4w9WgXcQ",
		"hl=de",
		"local=false",
	} {
		if !strings.Contains(u, fragment) {
			t.Errorf("url missing %q: %s", fragment, u)
		}
	}
}

func TestResolvePlayerPreDecipher(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: cipheredPlayer()}
	s := testSettings()
	s.PreDecipherStreams = true
	r, _ := newTestResolver(upstream, s)

	doc, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	urls := streamURLs(doc)
	if len(urls) != 1 {
		t.Fatalf("got %d urls, want 1", len(urls))
	}
	if !strings.HasPrefix(urls[0], "https://rr4.googlevideo.com/videoplayback") {
		t.Errorf("url not deciphered to origin: %s", urls[0])
	}
	if strings.Contains(urls[0], "decipher_stream") {
		t.Errorf("pre-deciphered url still defers: %s", urls[0])
	}
}

func TestResolvePlayerCacheHit(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: preSignedPlayer()}
	r, _ := newTestResolver(upstream, testSettings())

	first, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", false)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", false)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if upstream.playerCalls != 1 {
		t.Fatalf("playerCalls = %d, want 1", upstream.playerCalls)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatal("cached response differs from original")
	}
}

func TestResolvePlayerCacheKeySeparatesLocal(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: preSignedPlayer()}
	r, _ := newTestResolver(upstream, testSettings())

	if _, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	upstream.playerDoc = preSignedPlayer()
	if _, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if upstream.playerCalls != 2 {
		t.Fatalf("playerCalls = %d, want 2 (local flag must not collide)", upstream.playerCalls)
	}
}

func TestResolvePlayerScriptFetchedOncePerGeneration(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: preSignedPlayer()}
	r, _ := newTestResolver(upstream, testSettings())

	if _, err := r.ResolvePlayer(context.Background(), "dQw4w9WgXcQ", "en", false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	upstream.playerDoc = preSignedPlayer()
	if _, err := r.ResolvePlayer(context.Background(), "aaaaaaaaaaa", "en", false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if upstream.scriptCalls != 1 {
		t.Fatalf("scriptCalls = %d, want 1 (unchanged id must reuse cached script)", upstream.scriptCalls)
	}
}

func TestResolvePlayerClassification(t *testing.T) {
	cases := []struct {
		status string
		want   error
	}{
		{"LOGIN_REQUIRED", ErrLoginRequired},
		{"ERROR", ErrResponseUnplayable},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			upstream := &fakeUpstream{playerDoc: map[string]any{
				"playabilityStatus": map[string]any{"status": tc.status},
			}}
			r, _ := newTestResolver(upstream, testSettings())
			_, err := r.ResolvePlayer(context.Background(), "x", "en", false)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestResolvePlayerEmptyStreamsIsNotAnError(t *testing.T) {
	upstream := &fakeUpstream{playerDoc: map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"streamingData":     map[string]any{"formats": []any{}, "adaptiveFormats": []any{}},
	}}
	r, _ := newTestResolver(upstream, testSettings())
	if _, err := r.ResolvePlayer(context.Background(), "x", "en", false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestResolvePlaylistPageValidation(t *testing.T) {
	upstream := &fakeUpstream{}
	r, _ := newTestResolver(upstream, testSettings())

	for _, page := range []int{0, -1} {
		if _, err := r.ResolvePlaylistPage(context.Background(), "PLx", "en", page); !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("page %d: err = %v, want ErrPageOutOfRange", page, err)
		}
	}
}

func TestRewriteOriginURL(t *testing.T) {
	got := RewriteOriginURL(
		"https://rr4---sn-h0jeened.googlevideo.com/videoplayback?expire=1",
		"http://gw.example", false)
	want := "http://gw.example/videoplayback?expire=1&host=rr4---sn-h0jeened.googlevideo.com&local=false"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	passthrough := RewriteOriginURL("https://example.com/x", "http://gw.example", false)
	if passthrough != "https://example.com/x" {
		t.Fatalf("non-origin url rewritten: %s", passthrough)
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://youtube.com/watch?v=PxeFyxrUWt0", "PxeFyxrUWt0"},
		{"https://youtu.be/PxeFyxrUWt0", "PxeFyxrUWt0"},
		{"PxeFyxrUWt0", "PxeFyxrUWt0"},
		{"https://youtube.com/watch?v=PxeFyxrUWt0&t=10", "PxeFyxrUWt0"},
	}
	for _, tc := range cases {
		if got := ExtractVideoID(tc.in); got != tc.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestImportLocalPlaylists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/mine.json", `["dQw4w9WgXcQ", "https://youtu.be/PxeFyxrUWt0"]`)

	upstream := &fakeUpstream{playerDoc: map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"videoDetails": map[string]any{
			"title":         "A Song",
			"author":        "Someone",
			"channelId":     "UCsome",
			"lengthSeconds": "212",
		},
	}}
	s := testSettings()
	s.PlaylistsPath = dir
	r, _ := newTestResolver(upstream, s)

	r.ImportLocalPlaylists(context.Background())

	playlist, ok := r.LocalPlaylist(context.Background(), "mine.json")
	if !ok {
		t.Fatal("playlist not imported")
	}
	if playlist["author"] != "yaytapi" {
		t.Errorf("author = %v", playlist["author"])
	}
	if playlist["isListed"] != false {
		t.Errorf("isListed = %v", playlist["isListed"])
	}
	videos, _ := playlist["videos"].([]any)
	if len(videos) != 2 {
		t.Fatalf("videos = %v", playlist["videos"])
	}
	first := videos[0].(map[string]any)
	if first["videoId"] != "dQw4w9WgXcQ" {
		t.Errorf("videoId = %v", first["videoId"])
	}
	if first["title"] != "A Song" {
		t.Errorf("title = %v", first["title"])
	}

	// A second import must not refetch.
	calls := upstream.playerCalls
	r.ImportLocalPlaylists(context.Background())
	if upstream.playerCalls != calls {
		t.Fatalf("playerCalls grew from %d to %d on reimport", calls, upstream.playerCalls)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}
