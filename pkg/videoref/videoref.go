// Package videoref resolves links to externally hosted videos.
package videoref

import (
	"fmt"
	"regexp"
)

// watch?v=<id>, youtu.be/<id>, embed/<id>
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

// ExtractVideoID returns the external video id in rawURL, ok=false when no form matches
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL embeddable player url for videoID
func EmbedURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s", videoID)
}

// ThumbnailURL thumbnail image url for videoID
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
}
