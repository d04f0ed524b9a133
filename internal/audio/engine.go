package audio

// Engine is the playback peripheral the controller drives. Load is
// asynchronous on real backends; completion and failure come back
// through the controller's HandleLoaded and HandleEngineError, and the
// end of a track through OnTrackEnd.
type Engine interface {
	Load(url string) error
	Play() error
	Pause()
	Stop()
	Seek(seconds float64)
	SetGain(gain float64)
}
