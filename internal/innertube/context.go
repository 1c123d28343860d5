package innertube

// ClientContext identifies the Innertube client a request impersonates.
// The android context yields pre-signed stream URLs and skips deciphering.
type ClientContext struct {
	Name          string
	Version       string
	UserAgent     string
	ClientNameID  int
	OsName        string
	OsVersion     string
	AndroidSDKVer int
}

var (
	// WebContext is the standard desktop web client.
	WebContext = ClientContext{
		Name:         "WEB",
		Version:      "2.20260114.08.00",
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ClientNameID: 1,
	}

	// AndroidContext mimics the official Android app.
	AndroidContext = ClientContext{
		Name:          "ANDROID",
		Version:       "21.02.35",
		UserAgent:     "com.google.android.youtube/21.02.35 (Linux; U; Android 11) gzip",
		ClientNameID:  3,
		OsName:        "Android",
		OsVersion:     "11",
		AndroidSDKVer: 30,
	}
)

// requestContext is the JSON "context" object sent with every Innertube call.
type requestContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	UserAgent         string `json:"userAgent,omitempty"`
	OsName            string `json:"osName,omitempty"`
	OsVersion         string `json:"osVersion,omitempty"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	AcceptLanguage    string `json:"hl"`
	TimeZone          string `json:"timeZone"`
	UtcOffsetMinutes  int    `json:"utcOffsetMinutes"`
}

func (c ClientContext) toRequestContext(lang string) requestContext {
	if lang == "" {
		lang = "en"
	}
	return requestContext{
		Client: clientInfo{
			ClientName:        c.Name,
			ClientVersion:     c.Version,
			UserAgent:         c.UserAgent,
			OsName:            c.OsName,
			OsVersion:         c.OsVersion,
			AndroidSdkVersion: c.AndroidSDKVer,
			AcceptLanguage:    lang,
			TimeZone:          "UTC",
		},
	}
}
