package invidious

import "fmt"

// Alert is one upstream alert attached to a browse response, typically
// signalling that a playlist does not exist or is private.
type Alert struct {
	Type string
	Text string
}

// AlertError is returned when a browse payload carries alerts instead of a
// playlist. Handlers render it as a 404 with the first alert's text.
type AlertError struct {
	Alerts []Alert
}

func (e *AlertError) Error() string {
	if len(e.Alerts) == 0 {
		return "playlist unavailable"
	}
	return fmt.Sprintf("playlist unavailable: %s", e.Alerts[0].Text)
}

// First returns the leading alert, zero-valued when none were parsed.
func (e *AlertError) First() Alert {
	if len(e.Alerts) == 0 {
		return Alert{}
	}
	return e.Alerts[0]
}

// ParsePlaylist converts a browse payload (initial page or continuation)
// into the Invidious playlist shape. Payloads carrying alerts yield an
// *AlertError instead.
func ParsePlaylist(browse map[string]any, lang string) (*Object, error) {
	if alerts := parseAlerts(browse); len(alerts) > 0 {
		return nil, &AlertError{Alerts: alerts}
	}

	out := NewObject()
	out.Set("type", "playlist")

	header := digMap(browse, "header", "playlistHeaderRenderer")
	if header != nil {
		if title := text(header, "title"); title != "" {
			out.Set("title", title)
		}
		playlistID := digString(header, "playlistId")
		if playlistID != "" {
			out.Set("playlistId", playlistID)
			out.Set("playlistThumbnail", "/vi/"+playlistID+"/mqdefault.jpg")
		}
		if author := text(header, "ownerText"); author != "" {
			out.Set("author", author)
		}
		if channelID := digString(header, "ownerEndpoint", "browseEndpoint", "browseId"); channelID != "" {
			out.Set("authorId", channelID)
			out.Set("authorUrl", "/channel/"+channelID)
		}
		if description := text(header, "descriptionText"); description != "" {
			out.Set("description", description)
			out.Set("descriptionHtml", descriptionToHTML(description))
		}
		if count, ok := parseCount(text(header, "numVideosText")); ok {
			out.Set("videoCount", count)
		}
		if views, ok := parseCount(text(header, "viewCountText")); ok {
			out.Set("viewCount", views)
		}
		out.Set("isListed", !digBoolDefault(header, "isUnlisted"))
	}

	videos := parsePlaylistVideos(browse)
	out.Set("videos", videos)
	if !out.Has("videoCount") {
		out.Set("videoCount", len(videos))
	}
	return out, nil
}

func parseAlerts(browse map[string]any) []Alert {
	entries := digArray(browse, "alerts")
	if entries == nil {
		return nil
	}
	alerts := make([]Alert, 0, len(entries))
	for _, entry := range entries {
		for _, renderer := range []string{"alertRenderer", "alertWithButtonRenderer"} {
			node := digMap(entry, renderer)
			if node == nil {
				continue
			}
			alerts = append(alerts, Alert{
				Type: digString(node, "type"),
				Text: text(node, "text"),
			})
		}
	}
	return alerts
}

func parsePlaylistVideos(browse map[string]any) []any {
	items := playlistVideoItems(browse)
	videos := make([]any, 0, len(items))
	for _, item := range items {
		renderer := digMap(item, "playlistVideoRenderer")
		if renderer == nil {
			continue
		}
		videoID := digString(renderer, "videoId")
		if videoID == "" {
			continue
		}
		video := map[string]any{
			"title":           text(renderer, "title"),
			"videoId":         videoID,
			"videoThumbnails": GenerateVideoThumbnails(videoID, FallbackMaxThumbnailWidth),
		}
		if author := text(renderer, "shortBylineText"); author != "" {
			video["author"] = author
		}
		if byline := digArray(renderer, "shortBylineText", "runs"); len(byline) > 0 {
			if channelID := digString(byline[0], "navigationEndpoint", "browseEndpoint", "browseId"); channelID != "" {
				video["authorId"] = channelID
				video["authorUrl"] = "/channel/" + channelID
			}
		}
		if index, ok := digInt(renderer, "index", "simpleText"); ok {
			video["index"] = index
		}
		if length, ok := digInt(renderer, "lengthSeconds"); ok {
			video["lengthSeconds"] = length
		}
		videos = append(videos, video)
	}
	return videos
}

// playlistVideoItems finds the video list in either an initial browse page
// or a continuation response.
func playlistVideoItems(browse map[string]any) []any {
	if items := digArray(browse, "onResponseReceivedActions"); items != nil {
		for _, action := range items {
			if continuation := digArray(action, "appendContinuationItemsAction", "continuationItems"); continuation != nil {
				return continuation
			}
		}
	}
	for _, tab := range digArray(browse, "contents", "twoColumnBrowseResultsRenderer", "tabs") {
		sections := digArray(tab, "tabRenderer", "content", "sectionListRenderer", "contents")
		for _, section := range sections {
			for _, item := range digArray(section, "itemSectionRenderer", "contents") {
				if list := digArray(item, "playlistVideoListRenderer", "contents"); list != nil {
					return list
				}
			}
		}
	}
	return nil
}
