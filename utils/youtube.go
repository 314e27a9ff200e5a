package utils

import "regexp"

// Matches watch, embed, v/ and short youtu.be links; the id is the first
// capture group.
var youTubeIdPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^?&]+)`)

// ExtractYouTubeVideoId pulls the video id out of any common YouTube URL
// shape. Returns "" when the URL is not a YouTube link.
func ExtractYouTubeVideoId(url string) string {
	m := youTubeIdPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
