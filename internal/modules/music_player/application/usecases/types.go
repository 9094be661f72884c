package usecases

import (
	"time"

	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// SearchSnapshot is an alias for domain.SearchSnapshot.
type SearchSnapshot = domain.SearchSnapshot

// PlayerSnapshot is an alias for domain.PlayerSnapshot.
type PlayerSnapshot = domain.PlayerSnapshot

// PlaybackPhase is an alias for domain.PlaybackPhase.
type PlaybackPhase = domain.PlaybackPhase

// Re-exported constants used by the render layer.
const (
	SearchStatusIdle    = domain.SearchStatusIdle
	SearchStatusLoading = domain.SearchStatusLoading
	SearchStatusError   = domain.SearchStatusError
	SearchStatusEmpty   = domain.SearchStatusEmpty

	PhaseNoTrack  = domain.PhaseNoTrack
	PhasePaused   = domain.PhasePaused
	PhaseStarting = domain.PhaseStarting
	PhasePlaying  = domain.PhasePlaying

	LoopModeNone  = domain.LoopModeNone
	LoopModeTrack = domain.LoopModeTrack
)

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	return domain.FormatDuration(d)
}
