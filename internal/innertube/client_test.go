package innertube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
)

func TestFetchPlayerRequestShape(t *testing.T) {
	var (
		gotPath   string
		gotQuery  string
		gotHeader http.Header
		gotBody   map[string]any
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"playabilityStatus":{"status":"OK"}}`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))
	raw, err := c.FetchPlayer(context.Background(), "dQw4w9WgXcQ", 19834, WebContext, "en")
	if err != nil {
		t.Fatalf("FetchPlayer: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatal("response not valid JSON")
	}

	if gotPath != "/youtubei/v1/player" {
		t.Errorf("path = %s", gotPath)
	}
	if gotQuery != "key="+defaultAPIKey+"&prettyPrint=false" {
		t.Errorf("query = %s", gotQuery)
	}
	if gotHeader.Get("X-Youtube-Client-Name") != "1" {
		t.Errorf("client name header = %s", gotHeader.Get("X-Youtube-Client-Name"))
	}
	if gotHeader.Get("X-Youtube-Client-Version") != WebContext.Version {
		t.Errorf("client version header = %s", gotHeader.Get("X-Youtube-Client-Version"))
	}

	if gotBody["videoId"] != "dQw4w9WgXcQ" {
		t.Errorf("videoId = %v", gotBody["videoId"])
	}
	if gotBody["contentCheckOk"] != true || gotBody["racyCheckOk"] != true {
		t.Error("content checks not set")
	}
	playback := gotBody["playbackContext"].(map[string]any)["contentPlaybackContext"].(map[string]any)
	if playback["signatureTimestamp"] != float64(19834) {
		t.Errorf("signatureTimestamp = %v", playback["signatureTimestamp"])
	}
	clientInfo := gotBody["context"].(map[string]any)["client"].(map[string]any)
	if clientInfo["hl"] != "en" {
		t.Errorf("hl = %v", clientInfo["hl"])
	}
}

func TestFetchPlayerNonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>captcha</html>"))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))
	if _, err := c.FetchPlayer(context.Background(), "x", 0, WebContext, "en"); !errors.Is(err, ErrFailedToSerialize) {
		t.Fatalf("err = %v, want ErrFailedToSerialize", err)
	}
}

func TestFetchPlaylistUsesVLBrowseID(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))
	if _, err := c.FetchPlaylist(context.Background(), "PLabc", WebContext, "en"); err != nil {
		t.Fatalf("FetchPlaylist: %v", err)
	}
	if gotBody["browseId"] != "VLPLabc" {
		t.Errorf("browseId = %v", gotBody["browseId"])
	}
}

func TestFetchPlayerJSID(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		err  error
	}{
		{"escaped slashes", `var sc = {"js":"\/s\/player\/8e83b8a3\/player_ias.vflset\/en_US\/base.js"};`, "8e83b8a3", nil},
		{"plain slashes", `"player/0004de42/"`, "0004de42", nil},
		{"missing id", `no player here`, "", ErrPlayerJSIDNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/iframe_api" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			c := NewClient(WithBaseURL(ts.URL))
			id, err := c.FetchPlayerJSID(context.Background())
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if id != tc.want {
				t.Errorf("id = %s, want %s", id, tc.want)
			}
		})
	}
}

func TestFetchPlayerJSPath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("var config = {signatureTimestamp:19834};"))
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))
	script, err := c.FetchPlayerJS(context.Background(), "8e83b8a3")
	if err != nil {
		t.Fatalf("FetchPlayerJS: %v", err)
	}
	if gotPath != "/s/player/8e83b8a3/player_ias.vflset/en_US/base.js" {
		t.Errorf("path = %s", gotPath)
	}
	if script == "" {
		t.Error("empty script")
	}
}
