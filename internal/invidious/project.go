package invidious

import (
	"context"
	"net/url"
)

// NextFetcher supplies the next payload. It is invoked on every projection
// when non-nil: besides the fields the player payload cannot fill, the next
// payload feeds the comment continuation links that ride along with every
// response.
type NextFetcher func(ctx context.Context) (map[string]any, error)

// ProjectOptions carries the output-shaping toggles.
type ProjectOptions struct {
	RetainNullKeys  bool
	SortToInvSchema bool
	AttachInnertube bool
	Lang            string
}

// synthesisedFields carry a value in the output whatever upstream said and
// whatever the mask asked for, alongside comments.
var synthesisedFields = []string{
	"videoThumbnails", "captions", "keywords", "rating", "dislikeCount",
}

// ProjectVideo builds the masked Invidious video document from a player and
// a next payload. The synthesised fields and the comment links survive any
// mask.
func ProjectVideo(ctx context.Context, player map[string]any, fetchNext NextFetcher, mask []string, opts ProjectOptions) (*Object, error) {
	out := FmtInv(player, opts.Lang)

	var next map[string]any
	if fetchNext != nil {
		fetched, err := fetchNext(ctx)
		if err != nil {
			return nil, err
		}
		next = fetched
		FmtInvMerging(next, opts.Lang, out)
	}

	videoID, _ := out.Get("videoId")
	videoIDStr, _ := videoID.(string)

	masked := make(map[string]bool, len(mask))
	for _, field := range mask {
		masked[field] = true
	}
	for _, field := range synthesisedFields {
		masked[field] = true
	}
	for _, key := range out.Keys() {
		if !masked[key] {
			out.Delete(key)
		}
	}

	for _, field := range synthesisedFields {
		switch field {
		case "videoThumbnails":
			out.Set("videoThumbnails", GenerateVideoThumbnails(videoIDStr, MaxStreamWidth(player)))
		case "captions":
			if !out.Has("captions") {
				out.Set("captions", []any{})
			}
		case "keywords":
			if !out.Has("keywords") {
				out.Set("keywords", []string{})
			}
		case "rating":
			if !out.Has("rating") {
				out.Set("rating", 0)
			}
		case "dislikeCount":
			if !out.Has("dislikeCount") {
				out.Set("dislikeCount", 0)
			}
		}
	}

	out.Delete("hlsUrl")

	if opts.RetainNullKeys {
		for _, field := range mask {
			if !out.Has(field) {
				out.Set(field, nil)
			}
		}
	}
	if opts.SortToInvSchema {
		out.Reorder(mask)
	}

	comments := []any{}
	if next != nil {
		comments = commentLinks(videoIDStr, next)
	}
	out.Set("comments", comments)
	if opts.AttachInnertube {
		out.Set("innertube", map[string]any{"player": player, "next": next})
	}
	return out, nil
}

func commentLinks(videoID string, next map[string]any) []any {
	continuations := CommentContinuations(next)
	links := make([]any, 0, len(continuations))
	for _, c := range continuations {
		links = append(links, map[string]any{
			"title": c.Title,
			"url":   "/api/v1/comments/" + videoID + "?continuation=" + url.QueryEscape(c.Token),
			"token": c.Token,
		})
	}
	return links
}
