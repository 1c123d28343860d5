package invidious

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsRegexp = regexp.MustCompile(`[\d,]+`)

// CommentContinuation is one comment section continuation token found in a
// next payload, labelled by its section title.
type CommentContinuation struct {
	Title string
	Token string
}

// FmtInvMerging fills the fields only the next payload carries into an
// already-built video object: likeCount, publishedText, subCountText,
// authorThumbnails and recommendedVideos. Existing keys are not overwritten.
func FmtInvMerging(next map[string]any, lang string, accum *Object) {
	contents := digArray(next, "contents", "twoColumnWatchNextResults", "results", "results", "contents")
	for _, item := range contents {
		if primary := digMap(item, "videoPrimaryInfoRenderer"); primary != nil {
			mergePrimaryInfo(primary, accum)
		}
		if secondary := digMap(item, "videoSecondaryInfoRenderer"); secondary != nil {
			mergeSecondaryInfo(secondary, accum)
		}
	}
	if !accum.Has("recommendedVideos") {
		if recommended := recommendedVideos(next); recommended != nil {
			accum.Set("recommendedVideos", recommended)
		}
	}
}

func mergePrimaryInfo(primary map[string]any, accum *Object) {
	if !accum.Has("publishedText") {
		if published := text(primary, "dateText"); published != "" {
			accum.Set("publishedText", published)
		}
	}
	if !accum.Has("likeCount") {
		if likes, ok := likeCount(primary); ok {
			accum.Set("likeCount", likes)
		}
	}
}

func mergeSecondaryInfo(secondary map[string]any, accum *Object) {
	owner := digMap(secondary, "owner", "videoOwnerRenderer")
	if owner == nil {
		return
	}
	if !accum.Has("subCountText") {
		if subs := text(owner, "subscriberCountText"); subs != "" {
			accum.Set("subCountText", trimSubscriberSuffix(subs))
		}
	}
	if !accum.Has("authorThumbnails") {
		if thumbs := authorThumbnails(owner); thumbs != nil {
			accum.Set("authorThumbnails", thumbs)
		}
	}
}

// likeCount tries the segmented like button first, then the older toggle
// button shape, reading the count out of the accessibility label.
func likeCount(primary map[string]any) (int64, bool) {
	for _, button := range digArray(primary, "videoActions", "menuRenderer", "topLevelButtons") {
		label := digString(button,
			"segmentedLikeDislikeButtonViewModel", "likeButtonViewModel", "likeButtonViewModel",
			"toggleButtonViewModel", "toggleButtonViewModel", "defaultButtonViewModel",
			"buttonViewModel", "accessibilityText")
		if label == "" {
			label = digString(button, "toggleButtonRenderer", "defaultText",
				"accessibility", "accessibilityData", "label")
		}
		if n, ok := parseCount(label); ok {
			return n, true
		}
	}
	return 0, false
}

func parseCount(label string) (int64, bool) {
	match := digitsRegexp.FindString(label)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(match, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func trimSubscriberSuffix(subs string) string {
	return strings.TrimSpace(strings.TrimSuffix(subs, "subscribers"))
}

func authorThumbnails(owner map[string]any) []any {
	entries := digArray(owner, "thumbnail", "thumbnails")
	if entries == nil {
		return nil
	}
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		thumb := map[string]any{"url": digString(entry, "url")}
		if w, ok := digInt(entry, "width"); ok {
			thumb["width"] = w
		}
		if h, ok := digInt(entry, "height"); ok {
			thumb["height"] = h
		}
		out = append(out, thumb)
	}
	return out
}

func recommendedVideos(next map[string]any) []any {
	results := digArray(next, "contents", "twoColumnWatchNextResults",
		"secondaryResults", "secondaryResults", "results")
	if results == nil {
		return nil
	}
	out := make([]any, 0, len(results))
	for _, item := range results {
		renderer := digMap(item, "compactVideoRenderer")
		if renderer == nil {
			continue
		}
		videoID := digString(renderer, "videoId")
		if videoID == "" {
			continue
		}
		video := map[string]any{
			"videoId":         videoID,
			"title":           text(renderer, "title"),
			"videoThumbnails": GenerateVideoThumbnails(videoID, FallbackMaxThumbnailWidth),
			"author":          text(renderer, "longBylineText"),
			"viewCountText":   text(renderer, "shortViewCountText"),
		}
		if byline := digArray(renderer, "longBylineText", "runs"); len(byline) > 0 {
			if channelID := digString(byline[0], "navigationEndpoint", "browseEndpoint", "browseId"); channelID != "" {
				video["authorId"] = channelID
				video["authorUrl"] = "/channel/" + channelID
			}
		}
		if length := text(renderer, "lengthText"); length != "" {
			video["lengthSeconds"] = parseLengthText(length)
		}
		if views, ok := parseCount(text(renderer, "viewCountText")); ok {
			video["viewCount"] = views
		}
		out = append(out, video)
	}
	return out
}

// parseLengthText converts "1:02:03" style durations to seconds.
func parseLengthText(length string) int64 {
	var seconds int64
	for _, part := range strings.Split(length, ":") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		seconds = seconds*60 + n
	}
	return seconds
}

// CommentContinuations collects the comment section continuation tokens out
// of a next payload, in document order.
func CommentContinuations(next map[string]any) []CommentContinuation {
	var continuations []CommentContinuation
	contents := digArray(next, "contents", "twoColumnWatchNextResults", "results", "results", "contents")
	for _, item := range contents {
		section := digMap(item, "itemSectionRenderer")
		if section == nil {
			continue
		}
		identifier := digString(section, "sectionIdentifier")
		if !strings.HasPrefix(identifier, "comment") {
			continue
		}
		for _, entry := range digArray(section, "contents") {
			token := digString(entry, "continuationItemRenderer",
				"continuationEndpoint", "continuationCommand", "token")
			if token == "" {
				continue
			}
			continuations = append(continuations, CommentContinuation{
				Title: identifier,
				Token: token,
			})
		}
	}
	return continuations
}
