package session

// ViewMode is the main screen shown when the help overlay is hidden.
type ViewMode int

const (
	NowPlaying ViewMode = iota
	Playlist
)

// Next cycles NowPlaying <-> Playlist.
func (v ViewMode) Next() ViewMode {
	if v == Playlist {
		return NowPlaying
	}
	return Playlist
}

// String returns the name of the view mode.
func (v ViewMode) String() string {
	switch v {
	case Playlist:
		return "playlist"
	default:
		return "now playing"
	}
}
