package domain

// ResultList is the ordered, append-only list of tracks accumulated by one search session.
// Indices stay stable for the lifetime of the session; a new search replaces the list wholesale.
type ResultList struct {
	tracks []Track
}

// NewResultList creates a ResultList holding the given tracks.
func NewResultList(tracks ...Track) ResultList {
	l := ResultList{tracks: make([]Track, 0, len(tracks))}
	l.tracks = append(l.tracks, tracks...)
	return l
}

// IsEmpty returns true if the list has no tracks.
func (l *ResultList) IsEmpty() bool {
	return l.Len() == 0
}

// Len returns the number of tracks in the list.
func (l *ResultList) Len() int {
	return len(l.tracks)
}

func (l *ResultList) isValidIndex(index int) bool {
	return 0 <= index && index < l.Len()
}

// At returns the track at the given index.
// The second value is false if the index is out of bounds.
func (l *ResultList) At(index int) (Track, bool) {
	if !l.isValidIndex(index) {
		return Track{}, false
	}
	return l.tracks[index], true
}

// Tracks returns a copy of all tracks in the list.
func (l *ResultList) Tracks() []Track {
	result := make([]Track, l.Len())
	copy(result, l.tracks)
	return result
}

// Append adds tracks to the end of the list, preserving existing entries and their indices.
func (l *ResultList) Append(tracks ...Track) {
	l.tracks = append(l.tracks, tracks...)
}

// Clear removes all tracks from the list.
func (l *ResultList) Clear() {
	l.tracks = make([]Track, 0)
}

// NextIndex returns (current+1) mod N. The second value is false if the list is empty.
func NextIndex(current, length int) (int, bool) {
	if length <= 0 {
		return 0, false
	}
	return mod(current+1, length), true
}

// PreviousIndex returns (current-1+N) mod N. The second value is false if the list is empty.
func PreviousIndex(current, length int) (int, bool) {
	if length <= 0 {
		return 0, false
	}
	return mod(current-1+length, length), true
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
