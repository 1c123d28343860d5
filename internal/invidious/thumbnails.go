package invidious

// Thumbnail is one entry of a videoThumbnails array.
type Thumbnail struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// AuthorThumbnail is one entry of an authorThumbnails array.
type AuthorThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type thumbnailVariant struct {
	quality string
	file    string
	width   int
	height  int
}

var thumbnailVariants = []thumbnailVariant{
	{"maxres", "maxres", 1280, 720},
	{"maxresdefault", "maxresdefault", 1280, 720},
	{"sddefault", "sddefault", 640, 480},
	{"high", "hqdefault", 480, 360},
	{"medium", "mqdefault", 320, 180},
	{"default", "default", 120, 90},
	{"start", "1", 120, 90},
	{"middle", "2", 120, 90},
	{"end", "3", 120, 90},
}

// FallbackMaxThumbnailWidth applies when no stream carries a parsable size.
const FallbackMaxThumbnailWidth = 680

// GenerateVideoThumbnails builds gateway-relative thumbnail URLs for a
// video, dropping variants wider than maxWidth.
func GenerateVideoThumbnails(videoID string, maxWidth int) []Thumbnail {
	thumbnails := make([]Thumbnail, 0, len(thumbnailVariants))
	for _, v := range thumbnailVariants {
		if v.width > maxWidth {
			continue
		}
		thumbnails = append(thumbnails, Thumbnail{
			Quality: v.quality,
			URL:     "/vi/" + videoID + "/" + v.file + ".jpg",
			Width:   v.width,
			Height:  v.height,
		})
	}
	return thumbnails
}

// DefaultAuthorThumbnails is the placeholder set attached to gateway-owned
// playlists.
func DefaultAuthorThumbnails() []AuthorThumbnail {
	return []AuthorThumbnail{
		{URL: "/default_user.jpg", Width: 300, Height: 300},
		{URL: "/default_user.jpg", Width: 300, Height: 300},
		{URL: "/default_user.jpg", Width: 300, Height: 300},
	}
}
