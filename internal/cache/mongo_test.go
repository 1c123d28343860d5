package cache

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestMissingDocument(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"bare", mongo.ErrNoDocuments, true},
		{"wrapped", fmt.Errorf("find: %w", mongo.ErrNoDocuments), true},
		{"other", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := missingDocument(tc.err); got != tc.want {
				t.Errorf("missingDocument(%v) = %t, want %t", tc.err, got, tc.want)
			}
		})
	}
}
