package playerjs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrSuspiciousCipher rejects signatureCipher blobs that carry JS syntax.
var ErrSuspiciousCipher = errors.New("cipher payload contains executable syntax")

// suspiciousTokens must never appear in a decoded signatureCipher. The blob
// is a query string of opaque values; anything resembling JS syntax is an
// injection attempt against the sandbox. Belt and braces: the goja runtime
// only ever evaluates the published player script, not the blob.
var suspiciousTokens = []string{
	`"`, `'`, `;`, "function", "for", "while", "(", ")", "{", "}", "[", "]",
}

// RejectSuspiciousCipher returns ErrSuspiciousCipher when the decoded blob
// contains any guarded token.
func RejectSuspiciousCipher(signatureCipher string) error {
	for _, token := range suspiciousTokens {
		if strings.Contains(signatureCipher, token) {
			return ErrSuspiciousCipher
		}
	}
	return nil
}

// DecipherStream resolves a signatureCipher blob into a playable URL. The
// blob is a query string carrying the enciphered signature (s), the target
// query parameter name (sp) and the base stream URL (url).
func (d *Decipherer) DecipherStream(signatureCipher string) (string, error) {
	values, err := url.ParseQuery(signatureCipher)
	if err != nil {
		return "", fmt.Errorf("malformed signatureCipher: %w", err)
	}
	rawURL := values.Get("url")
	if rawURL == "" {
		return "", errors.New("signatureCipher carries no url")
	}
	streamURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("signatureCipher url unparsable: %w", err)
	}

	query := streamURL.Query()
	if s := values.Get("s"); s != "" {
		deciphered, err := d.DecipherSignature(s)
		if err != nil {
			return "", err
		}
		param := values.Get("sp")
		if param == "" {
			param = "signature"
		}
		query.Set(param, deciphered)
	}
	if n := query.Get("n"); n != "" {
		if deciphered, err := d.DecipherN(n); err == nil {
			query.Set("n", deciphered)
		}
	}
	streamURL.RawQuery = query.Encode()
	return streamURL.String(), nil
}

// DecipherStreams resolves a batch of signatureCipher blobs. Entries that
// fail stay empty; the caller decides whether partial results are usable.
func (d *Decipherer) DecipherStreams(signatureCiphers []string) ([]string, error) {
	results := make([]string, len(signatureCiphers))
	var firstErr error
	for i, sc := range signatureCiphers {
		resolved, err := d.DecipherStream(sc)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[i] = resolved
	}
	return results, firstErr
}
