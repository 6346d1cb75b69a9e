package model

import "fmt"

// Container is the file extension every download is stored with
const Container = ".mkv"

// DownloadSettings is derived from the current selector values each time a
// download is requested. It is never cached.
type DownloadSettings struct {
	Episode     EpisodeNumber
	Language    Language
	Quality     Quality
	Destination string
}

// Describe returns a short human readable form, e.g. "Episode 3 (SUB, 720p)"
func (s DownloadSettings) Describe() string {
	return fmt.Sprintf("%s (%s, %s)", s.Episode.Label(), s.Language, s.Quality.Label())
}
