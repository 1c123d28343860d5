package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/invidious"
	"github.com/yaytapi/yaytapi/internal/log"
	"github.com/yaytapi/yaytapi/internal/playerjs"
	"github.com/yaytapi/yaytapi/internal/resolver"
)

// errorBody is the uniform JSON error shape of every API route.
type errorBody struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	InnerMessage string `json:"inner_message,omitempty"`
	MessageType  string `json:"message_type,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		logger := log.WithComponent("api")
		logger.Error().Err(err).Msg("response encoding failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{ "type": "error", "message": "failed to serialize response" }`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message, innerMessage string) {
	writeJSON(w, status, errorBody{Type: "error", Message: message, InnerMessage: innerMessage}, false)
}

// writePlayerError maps resolver failures on the player path onto HTTP
// statuses. The outer message is constant; the variant supplies the inner.
func writePlayerError(w http.ResponseWriter, err error) {
	const message = "Failed to fetch `player` endpoint"
	switch {
	case errors.Is(err, resolver.ErrLoginRequired):
		writeError(w, http.StatusForbidden, message, resolver.ErrLoginRequired.Error())
	case errors.Is(err, resolver.ErrResponseUnplayable):
		writeError(w, http.StatusNotFound, message, resolver.ErrResponseUnplayable.Error())
	case errors.Is(err, playerjs.ErrSuspiciousCipher):
		writeError(w, http.StatusBadRequest, "Refusing to execute potentially malicious payload", "")
	default:
		writeError(w, http.StatusInternalServerError, message, err.Error())
	}
}

func writePlaylistError(w http.ResponseWriter, err error) {
	var alertErr *invidious.AlertError
	switch {
	case errors.As(err, &alertErr):
		first := alertErr.First()
		writeJSON(w, http.StatusNotFound, errorBody{
			Type:        "error",
			Message:     first.Text,
			MessageType: first.Type,
		}, false)
	case errors.Is(err, resolver.ErrPageOutOfRange):
		writeError(w, http.StatusBadRequest, "Page must be greater than zero", "")
	case errors.Is(err, resolver.ErrFailedToGenerateContinuation):
		writeError(w, http.StatusInternalServerError, "Error generating playlist continuation", "")
	case errors.Is(err, resolver.ErrFailedToParseContinuation):
		writeError(w, http.StatusInternalServerError, "Error parsing continuation response to JSON", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Unknown error", err.Error())
	}
}

func isPretty(r *http.Request) bool {
	return r.URL.Query().Get("pretty") == "1"
}
