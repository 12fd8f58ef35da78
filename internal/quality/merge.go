package quality

// Identified is anything carrying a stable question identity.
type Identified interface {
	Identity() string
}

// MergeFlagged joins skipped and improper questions into one list,
// de-duplicated by identity and keeping first occurrences in order.
// The returned set holds the identities that came from the improper list.
func MergeFlagged[T Identified](skipped, improper []T) ([]T, map[string]bool) {
	out := make([]T, 0, len(skipped)+len(improper))
	seen := make(map[string]bool, len(skipped)+len(improper))
	for _, list := range [][]T{skipped, improper} {
		for _, q := range list {
			id := q.Identity()
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, q)
		}
	}

	flagged := make(map[string]bool, len(improper))
	for _, q := range improper {
		flagged[q.Identity()] = true
	}
	return out, flagged
}
