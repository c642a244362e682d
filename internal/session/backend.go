package session

// Backend is the media engine a Session drives. Implementations are
// expected to return promptly; decoding and output happen elsewhere.
type Backend interface {
	// Load replaces the current media with the file at path without
	// starting playback.
	Load(path string) error
	Play() error
	// Pause toggles between paused and playing.
	Pause() error
	Stop() error
	// PositionMs and DurationMs may report 0 until the media is ready.
	PositionMs() int
	SetPositionMs(ms int) error
	DurationMs() int
}

// pauseReporter is implemented by backends that can report their toggle state.
type pauseReporter interface {
	Paused() bool
}
