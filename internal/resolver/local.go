package resolver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yaytapi/yaytapi/internal/invidious"
	"github.com/yaytapi/yaytapi/internal/log"
	"github.com/yaytapi/yaytapi/internal/settings"
)

const localPlaylistThumbnailWidth = 360

// localPlaylistFile is the object form of a playlist file. The array form
// (a bare list of video references) is handled separately.
type localPlaylistFile struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Videos      []string `json:"videos"`
}

// ExtractVideoID recovers a video id from a bare id, a /watch?v= link or a
// youtu.be/ short link.
func ExtractVideoID(ref string) string {
	if idx := strings.Index(ref, "/watch?v="); idx >= 0 {
		ref = ref[idx+len("/watch?v="):]
	} else if idx := strings.Index(ref, "youtu.be/"); idx >= 0 {
		ref = ref[idx+len("youtu.be/"):]
	}
	if amp := strings.IndexAny(ref, "&?"); amp >= 0 {
		ref = ref[:amp]
	}
	return ref
}

// ImportLocalPlaylists loads every *.json file in the configured playlists
// directory into the local-playlist collection. Files already present in
// the store are skipped, so repeated boots do not refetch.
func (r *Resolver) ImportLocalPlaylists(ctx context.Context) {
	if r.settings.PlaylistsPath == "" {
		return
	}
	logger := log.WithComponent("local-playlists")

	entries, err := os.ReadDir(r.settings.PlaylistsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", r.settings.PlaylistsPath).Msg("cannot read playlists directory")
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, ok := r.store.Get(ctx, localPlaylistCollection, name); ok {
			logger.Info().Str("file", name).Msg("skipping because already loaded into db")
			continue
		}
		if err := r.importPlaylistFile(ctx, name); err != nil {
			logger.Error().Err(err).Str("file", name).Msg("playlist import failed")
			continue
		}
		logger.Info().Str("file", name).Msg("loaded")
	}
}

func (r *Resolver) importPlaylistFile(ctx context.Context, name string) error {
	raw, err := os.ReadFile(filepath.Join(r.settings.PlaylistsPath, name))
	if err != nil {
		return err
	}

	file := localPlaylistFile{Title: name}
	var refs []string
	if err := json.Unmarshal(raw, &refs); err == nil {
		file.Videos = refs
	} else if err := json.Unmarshal(raw, &file); err != nil {
		return err
	}
	if file.Title == "" {
		file.Title = name
	}

	playlist, err := r.buildLocalPlaylist(ctx, &file)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(playlist)
	if err != nil {
		return err
	}
	r.store.Put(ctx, localPlaylistCollection, name, encoded)
	return nil
}

func (r *Resolver) buildLocalPlaylist(ctx context.Context, file *localPlaylistFile) (map[string]any, error) {
	videos := make([]any, 0, len(file.Videos))
	for i, ref := range file.Videos {
		videoID := ExtractVideoID(ref)
		if videoID == "" {
			continue
		}
		player, err := r.ResolvePlayerTTL(ctx, videoID, "en", false, settings.InfiniteCacheTimeout)
		if err != nil {
			return nil, err
		}
		details, _ := dig(player, "videoDetails").(map[string]any)
		video := map[string]any{
			"videoId":         videoID,
			"index":           i + 1,
			"videoThumbnails": invidious.GenerateVideoThumbnails(videoID, localPlaylistThumbnailWidth),
		}
		if title, ok := details["title"].(string); ok {
			video["title"] = title
		}
		if author, ok := details["author"].(string); ok {
			video["author"] = author
		}
		if channelID, ok := details["channelId"].(string); ok {
			video["authorId"] = channelID
		}
		if length, ok := details["lengthSeconds"].(string); ok {
			video["lengthSeconds"] = length
		}
		videos = append(videos, video)
	}

	return map[string]any{
		"type":             "playlist",
		"title":            file.Title,
		"playlistId":       file.Title,
		"author":           "yaytapi",
		"authorThumbnails": invidious.DefaultAuthorThumbnails(),
		"description":      file.Description,
		"descriptionHtml":  file.Description,
		"videoCount":       len(videos),
		"viewCount":        0,
		"updated":          time.Now().Unix(),
		"isListed":         false,
		"videos":           videos,
	}, nil
}
