package domain

// DefaultLoadMoreThreshold is the distance from the bottom of the results,
// in scroll units, within which the next page is requested.
const DefaultLoadMoreThreshold = 200

// ShouldLoadMore reports whether the viewport has been scrolled to within threshold units
// of the end of the document. It is evaluated on every scroll notification; callers
// still have to respect the session's in-flight guard.
func ShouldLoadMore(scrollPosition, viewportHeight, documentHeight, threshold int) bool {
	return scrollPosition+viewportHeight+threshold >= documentHeight
}
