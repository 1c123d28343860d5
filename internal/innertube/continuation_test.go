package innertube

import (
	"errors"
	"testing"
)

func TestPlaylistContinuationRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		playlist  string
		page      int
		wantID    string
		wantIndex uint64
	}{
		{"first page", "PLabc123", 1, "PLabc123", 0},
		{"second page", "PLabc123", 2, "PLabc123", 100},
		{"tenth page", "PLabc123", 10, "PLabc123", 900},
		{"channel uploads alias", "UCdeadbeef", 1, "UUdeadbeef", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := GeneratePlaylistContinuation(tc.playlist, tc.page)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			id, index, err := DecodePlaylistContinuation(token)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if id != tc.wantID {
				t.Errorf("id = %s, want %s", id, tc.wantID)
			}
			if index != tc.wantIndex {
				t.Errorf("index = %d, want %d", index, tc.wantIndex)
			}
		})
	}
}

func TestPlaylistContinuationRejectsBadPage(t *testing.T) {
	for _, page := range []int{0, -1} {
		if _, err := GeneratePlaylistContinuation("PLabc", page); !errors.Is(err, ErrBadContinuationPage) {
			t.Errorf("page %d: err = %v, want ErrBadContinuationPage", page, err)
		}
	}
}

func TestPlaylistContinuationIsURLSafe(t *testing.T) {
	token, err := GeneratePlaylistContinuation("PLabc123", 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '%' || c == '.' || c == '~':
		default:
			t.Fatalf("token contains unescaped character %q: %s", c, token)
		}
	}
}
