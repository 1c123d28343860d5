package invidious

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const mimeCodecsPattern = `codecs="([^"]+)"`

var codecsRegexp = regexp.MustCompile(mimeCodecsPattern)
var sizeRegexp = regexp.MustCompile(`^(\d+)x(\d+)$`)

// FmtInv projects a raw player payload into the Invidious video shape.
// Fields only the next payload can provide (likeCount, publishedText,
// authorThumbnails, subCountText, recommendedVideos) stay absent; the
// projector merges them on demand.
func FmtInv(player map[string]any, lang string) *Object {
	out := NewObject()
	details := digMap(player, "videoDetails")
	micro := digMap(player, "microformat", "playerMicroformatRenderer")

	out.Set("type", "video")
	if title := digString(details, "title"); title != "" {
		out.Set("title", title)
	}
	if videoID := digString(details, "videoId"); videoID != "" {
		out.Set("videoId", videoID)
	}
	if description, ok := details["shortDescription"].(string); ok {
		out.Set("description", description)
		out.Set("descriptionHtml", descriptionToHTML(description))
	}
	if published := parsePublishDate(digString(micro, "publishDate")); published != 0 {
		out.Set("published", published)
	}
	if keywords := digArray(details, "keywords"); keywords != nil {
		out.Set("keywords", stringSlice(keywords))
	}
	if viewCount, ok := digInt(details, "viewCount"); ok {
		out.Set("viewCount", viewCount)
	}
	if isFamilySafe, ok := digBool(micro, "isFamilySafe"); ok {
		out.Set("isFamilyFriendly", isFamilySafe)
	}
	if regions := digArray(micro, "availableCountries"); regions != nil {
		out.Set("allowedRegions", stringSlice(regions))
	}
	if category := digString(micro, "category"); category != "" {
		out.Set("genre", category)
		out.Set("genreUrl", nil)
	}
	if author := digString(details, "author"); author != "" {
		out.Set("author", author)
	}
	if channelID := digString(details, "channelId"); channelID != "" {
		out.Set("authorId", channelID)
		out.Set("authorUrl", "/channel/"+channelID)
	}
	if lengthSeconds, ok := digInt(details, "lengthSeconds"); ok {
		out.Set("lengthSeconds", lengthSeconds)
	}
	if allowRatings, ok := digBool(details, "allowRatings"); ok {
		out.Set("allowRatings", allowRatings)
	}
	if isUnlisted, ok := digBool(micro, "isUnlisted"); ok {
		out.Set("isListed", !isUnlisted)
	} else {
		out.Set("isListed", !digBoolDefault(details, "isPrivate"))
	}
	out.Set("liveNow", digBoolDefault(details, "isLiveContent"))
	out.Set("isUpcoming", digString(player, "playabilityStatus", "status") == "LIVE_STREAM_OFFLINE")
	if hasYpc, ok := digBool(micro, "hasYpcMetadata"); ok {
		out.Set("paid", hasYpc)
		out.Set("premium", false)
	}
	if startTimestamp := digString(micro, "liveBroadcastDetails", "startTimestamp"); startTimestamp != "" {
		if t, err := time.Parse(time.RFC3339, startTimestamp); err == nil {
			out.Set("premiereTimestamp", t.Unix())
		}
	}
	if hlsURL := digString(player, "streamingData", "hlsManifestUrl"); hlsURL != "" {
		out.Set("hlsUrl", hlsURL)
	}
	if dashURL := digString(player, "streamingData", "dashManifestUrl"); dashURL != "" {
		out.Set("dashUrl", dashURL)
	}

	if formats := digArray(player, "streamingData", "formats"); formats != nil {
		out.Set("formatStreams", mapFormats(formats, true))
	}
	if adaptive := digArray(player, "streamingData", "adaptiveFormats"); adaptive != nil {
		out.Set("adaptiveFormats", mapFormats(adaptive, false))
	}
	if captions := mapCaptions(player, digString(details, "videoId")); captions != nil {
		out.Set("captions", captions)
	}
	return out
}

func digBoolDefault(doc any, path ...string) bool {
	b, _ := digBool(doc, path...)
	return b
}

// MaxStreamWidth derives the widest stream advertised by the payload from
// the "WxH" size fields; FallbackMaxThumbnailWidth when none parse.
func MaxStreamWidth(player map[string]any) int {
	maxWidth := 0
	collect := func(entries []any) {
		for _, entry := range entries {
			if w, ok := digInt(entry, "width"); ok && int(w) > maxWidth {
				maxWidth = int(w)
			}
			if m := sizeRegexp.FindStringSubmatch(digString(entry, "size")); len(m) == 3 {
				if w, err := strconv.Atoi(m[1]); err == nil && w > maxWidth {
					maxWidth = w
				}
			}
		}
	}
	collect(digArray(player, "streamingData", "formats"))
	collect(digArray(player, "streamingData", "adaptiveFormats"))
	if maxWidth == 0 {
		return FallbackMaxThumbnailWidth
	}
	return maxWidth
}

func mapFormats(entries []any, muxed bool) []any {
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		stream := map[string]any{}
		if u := digString(entry, "url"); u != "" {
			stream["url"] = u
		}
		if itag, ok := digInt(entry, "itag"); ok {
			stream["itag"] = fmt.Sprint(itag)
		}
		mime := digString(entry, "mimeType")
		if mime != "" {
			stream["type"] = mime
			stream["container"] = containerOf(mime)
			if m := codecsRegexp.FindStringSubmatch(mime); len(m) == 2 {
				stream["encoding"] = m[1]
			}
		}
		if bitrate, ok := digInt(entry, "bitrate"); ok {
			stream["bitrate"] = fmt.Sprint(bitrate)
		}
		if clen := digString(entry, "contentLength"); clen != "" {
			stream["clen"] = clen
		}
		if lmt := digString(entry, "lastModified"); lmt != "" {
			stream["lmt"] = lmt
		}
		if fps, ok := digInt(entry, "fps"); ok {
			stream["fps"] = fps
		}
		if projection := digString(entry, "projectionType"); projection != "" {
			stream["projectionType"] = projection
		}
		if quality := digString(entry, "qualityLabel"); quality != "" {
			stream["qualityLabel"] = quality
			stream["resolution"] = quality
		}
		if w, wok := digInt(entry, "width"); wok {
			if h, hok := digInt(entry, "height"); hok && muxed {
				stream["size"] = fmt.Sprintf("%dx%d", w, h)
			}
		}
		if muxed {
			if quality := digString(entry, "quality"); quality != "" {
				stream["quality"] = quality
			}
		} else {
			if initRange := digMap(entry, "initRange"); initRange != nil {
				stream["init"] = digString(initRange, "start") + "-" + digString(initRange, "end")
			}
			if indexRange := digMap(entry, "indexRange"); indexRange != nil {
				stream["index"] = digString(indexRange, "start") + "-" + digString(indexRange, "end")
			}
			if audioQuality := digString(entry, "audioQuality"); audioQuality != "" {
				stream["audioQuality"] = audioQuality
			}
			if sampleRate := digString(entry, "audioSampleRate"); sampleRate != "" {
				stream["audioSampleRate"] = sampleRate
			}
			if channels, ok := digInt(entry, "audioChannels"); ok {
				stream["audioChannels"] = channels
			}
		}
		out = append(out, stream)
	}
	return out
}

func mapCaptions(player map[string]any, videoID string) []any {
	tracks := digArray(player, "captions", "playerCaptionsTracklistRenderer", "captionTracks")
	if tracks == nil {
		return nil
	}
	out := make([]any, 0, len(tracks))
	for _, track := range tracks {
		label := text(track, "name")
		code := digString(track, "languageCode")
		out = append(out, map[string]any{
			"label":        label,
			"languageCode": code,
			"url":          "/api/v1/captions/" + videoID + "?label=" + strings.ReplaceAll(label, " ", "+"),
		})
	}
	return out
}

func containerOf(mime string) string {
	slash := strings.Index(mime, "/")
	if slash < 0 {
		return ""
	}
	rest := mime[slash+1:]
	if semi := strings.Index(rest, ";"); semi >= 0 {
		rest = rest[:semi]
	}
	return rest
}

func descriptionToHTML(description string) string {
	escaped := html.EscapeString(description)
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

func parsePublishDate(date string) int64 {
	if date == "" {
		return 0
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Unix()
		}
	}
	return 0
}
