package attest

// registry is an ordered collection of pending request entries. Both
// request kinds (file measurements and component evidence) are built
// on it; only the match predicate differs. Insertion order is
// preserved for fairness and debugging, correlation never depends on
// it.
type registry[T any] struct {
	entries []T
}

// add appends an entry at the end of the collection.
func (r *registry[T]) add(entry T) {
	r.entries = append(r.entries, entry)
}

// checkOff removes the first entry satisfying match and returns it.
// At most one entry is removed per call. The second return value
// reports whether a match was found; absence is not an error.
func (r *registry[T]) checkOff(match func(T) bool) (T, bool) {
	for i, entry := range r.entries {
		if match(entry) {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return entry, true
		}
	}
	var zero T
	return zero, false
}

// count returns the number of pending entries.
func (r *registry[T]) count() int {
	return len(r.entries)
}

// clear drops all pending entries, resolved or not.
func (r *registry[T]) clear() {
	r.entries = nil
}
