package invidious

import "strings"

// DefaultVideoMask is the public Invidious video schema, in output order.
var DefaultVideoMask = []string{
	"type",
	"title",
	"videoId",
	"videoThumbnails",
	"storyboards",
	"description",
	"descriptionHtml",
	"published",
	"publishedText",
	"keywords",
	"viewCount",
	"likeCount",
	"dislikeCount",
	"paid",
	"premium",
	"isFamilyFriendly",
	"allowedRegions",
	"genre",
	"genreUrl",
	"author",
	"authorId",
	"authorUrl",
	"authorThumbnails",
	"subCountText",
	"lengthSeconds",
	"allowRatings",
	"rating",
	"isListed",
	"liveNow",
	"isUpcoming",
	"premiereTimestamp",
	"hlsUrl",
	"dashUrl",
	"adaptiveFormats",
	"formatStreams",
	"captions",
	"recommendedVideos",
}

// ParseFieldsParam splits a fields query parameter into a mask. An empty
// parameter selects the default mask.
func ParseFieldsParam(fields string) []string {
	if strings.TrimSpace(fields) == "" {
		return DefaultVideoMask
	}
	parts := strings.Split(fields, ",")
	mask := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			mask = append(mask, trimmed)
		}
	}
	if len(mask) == 0 {
		return DefaultVideoMask
	}
	return mask
}
