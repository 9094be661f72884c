package domain

// LoopMode represents the repeat behavior of the current track.
type LoopMode int

const (
	LoopModeNone  LoopMode = iota // Default: advance to the next result when a track ends
	LoopModeTrack                 // The sink repeats the current track indefinitely
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	default:
		return "none"
	}
}

// ParseLoopMode converts a string to domain.LoopMode.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "track":
		return LoopModeTrack
	default:
		return LoopModeNone
	}
}

// Toggle flips between no looping and single-track looping.
func (m LoopMode) Toggle() LoopMode {
	if m == LoopModeTrack {
		return LoopModeNone
	}
	return LoopModeTrack
}
