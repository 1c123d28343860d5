// Package settings holds the runtime configuration of the gateway. An
// AppSettings value is built once from the command line and treated as
// immutable afterwards; every resolver reads it on each call.
package settings

import (
	"flag"
	"fmt"
	"math"
)

// DBType selects the key/value backend.
type DBType int

const (
	DBNone DBType = iota
	DBLocalEmbedded
	DBRemoteDocumentStore
)

// DefaultCacheTimeout is the TTL, in seconds, applied to cached upstream
// responses unless a resolver overrides it per call.
const DefaultCacheTimeout uint64 = 60

// InfiniteCacheTimeout never expires; the local playlist import uses it.
const InfiniteCacheTimeout uint64 = math.MaxUint64

// AppSettings is the effective gateway configuration.
type AppSettings struct {
	IPAddress string `json:"ip_address"`
	Port      int    `json:"port"`
	Workers   int    `json:"num_of_workers"`

	// PublicURL is baked into generated stream links. Empty means
	// "http://{ip}:{port}".
	PublicURL string `json:"pub_url,omitempty"`

	MongoDB       string `json:"mongo_db,omitempty"`
	DBName        string `json:"db_name"`
	PlaylistsPath string `json:"playlists_path,omitempty"`

	DecipherStreams         bool   `json:"decipher_streams"`
	PreDecipherStreams      bool   `json:"pre_decipher_streams"`
	UseAndroidEndpoint      bool   `json:"use_android_endpoint_for_streams"`
	EnableLocalStreaming    bool   `json:"enable_local_streaming"`
	EnableCORS              bool   `json:"enable_cors"`
	CacheRequests           bool   `json:"cache_requests"`
	CacheTimeout            uint64 `json:"cache_timeout"`
	SortToInvSchema         bool   `json:"sort_to_inv_schema"`
	RetainNullKeys          bool   `json:"retain_null_keys"`
	ReturnInnertubeResponse bool   `json:"return_innertube_response"`
	EnableAccessLogger      bool   `json:"enable_access_logger"`
	PrintConfig             bool   `json:"print_config"`
	PublishSettingsInStats  bool   `json:"publish_settings_inside_stats"`
}

// FromArgs parses command-line arguments (without the program name).
func FromArgs(args []string) (AppSettings, error) {
	fs := flag.NewFlagSet("yaytapi", flag.ContinueOnError)

	s := AppSettings{}
	var (
		noCache        bool
		noSort         bool
		hideNullFields bool
		noLogs         bool
		allOn          bool
	)

	fs.StringVar(&s.IPAddress, "ip", "127.0.0.1", "Bind IP address")
	fs.IntVar(&s.Port, "port", 8080, "Bind port")
	fs.IntVar(&s.Workers, "workers", 1, "Number of request handler workers")
	fs.StringVar(&s.PublicURL, "public-url", "", "Public URL baked into generated stream links")
	fs.StringVar(&s.MongoDB, "mongo-db", "", "MongoDB connection string (selects the remote document store)")
	fs.StringVar(&s.DBName, "db-name", "", "Database name (file name for the embedded store)")
	fs.StringVar(&s.PlaylistsPath, "playlists-path", "", "Directory to import local JSON playlists from")
	fs.BoolVar(&s.DecipherStreams, "decipher-streams", false, "Enable the /decipher_stream endpoint")
	fs.BoolVar(&s.PreDecipherStreams, "pre-decipher-streams", false, "Decipher streams on the video endpoint path")
	fs.BoolVar(&s.UseAndroidEndpoint, "use-android-endpoint", false, "Use the android client context to skip deciphering")
	fs.BoolVar(&s.EnableLocalStreaming, "enable-local-streaming", false, "Enable the /videoplayback proxy mode")
	fs.BoolVar(&s.EnableCORS, "enable-cors", false, "Enable permissive CORS")
	fs.BoolVar(&noCache, "no-cache", false, "Disable cache reads and writes")
	fs.BoolVar(&noSort, "no-sort", false, "Do not reorder output keys to the Invidious schema")
	fs.BoolVar(&hideNullFields, "hide-null-fields", false, "Omit missing keys from output")
	fs.BoolVar(&s.ReturnInnertubeResponse, "return-innertube", false, "Include raw upstream payloads under 'innertube'")
	fs.BoolVar(&noLogs, "no-logs", false, "Disable the access logger")
	fs.BoolVar(&s.PrintConfig, "print-config", false, "Dump the effective configuration")
	fs.BoolVar(&s.PublishSettingsInStats, "publish-settings", false, "Include a settings snapshot in /api/v1/stats")
	fs.BoolVar(&allOn, "all-on", false, "Enable every optional feature")

	if err := fs.Parse(args); err != nil {
		return AppSettings{}, err
	}

	if allOn {
		s.DecipherStreams = true
		s.EnableLocalStreaming = true
		s.EnableCORS = true
	}
	s.CacheRequests = !noCache
	s.CacheTimeout = DefaultCacheTimeout
	s.SortToInvSchema = !noSort
	s.RetainNullKeys = !hideNullFields
	s.EnableAccessLogger = !noLogs

	if s.DBName == "" {
		if s.MongoDB != "" {
			s.DBName = "yaytapi"
		} else {
			s.DBName = "yaytapi.db"
		}
	}
	return s, nil
}

// DBType reports which cache backend the settings select. With --no-cache a
// store is still opened when local playlists are configured, since they live
// in it; GetFresh gates resolver caching on CacheRequests separately. With
// no playlists either, nothing needs persistence and the none backend wins.
func (s *AppSettings) DBType() DBType {
	if !s.CacheRequests && s.PlaylistsPath == "" {
		return DBNone
	}
	if s.MongoDB != "" {
		return DBRemoteDocumentStore
	}
	return DBLocalEmbedded
}

// BaseURL is the self URL used when rewriting stream links.
func (s *AppSettings) BaseURL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	return fmt.Sprintf("http://%s:%d", s.IPAddress, s.Port)
}
