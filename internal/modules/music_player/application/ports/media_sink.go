package ports

import (
	"context"
	"time"
)

// MediaSink defines the interface for the platform audio output.
// Only the transport may command it. Asynchronous outcomes (end of track, decode
// failures, position changes) are reported as events on the event bus.
type MediaSink interface {
	// Load assigns a new source. It returns once the sink is ready to play it;
	// the source stays paused until Play is called.
	Load(ctx context.Context, sourceURL string) error

	// Play starts or resumes playback of the loaded source. It may reject.
	Play(ctx context.Context) error

	// Pause pauses playback.
	Pause(ctx context.Context) error

	// Seek jumps to the given position of the loaded source.
	Seek(ctx context.Context, position time.Duration) error

	// SetVolume sets the output volume in [0,1].
	SetVolume(ctx context.Context, volume float64) error

	// SetLooping enables or disables the sink's own single-track repeat.
	SetLooping(ctx context.Context, looping bool) error
}
