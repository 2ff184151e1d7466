package client

// Reconcile diffs the ids currently on screen against the ids already
// tracked and returns what to subscribe and what to release. Both outputs
// preserve the order of their source slice, and duplicates in current are
// collapsed so an id is never subscribed twice.
func Reconcile(current, tracked []string) (toSubscribe, toUnsubscribe []string) {
	want := make(map[string]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	have := make(map[string]bool, len(tracked))
	for _, id := range tracked {
		have[id] = true
	}

	seen := make(map[string]bool, len(current))
	for _, id := range current {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !have[id] {
			toSubscribe = append(toSubscribe, id)
		}
	}
	for _, id := range tracked {
		if !want[id] {
			toUnsubscribe = append(toUnsubscribe, id)
		}
	}
	return toSubscribe, toUnsubscribe
}
