package types

import "time"

// Entry is a cached value together with the tags it was stored under.
type Entry struct {
	Key   string   `json:"key" msgpack:"key"`
	Value string   `json:"value" msgpack:"value"`
	Tags  []string `json:"tags" msgpack:"tags"`
}

// MatchesAny reports whether any of tags is a member of set.
// Matching is literal and case-sensitive.
func MatchesAny(tags []string, set map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// TagSet builds a lookup set from a list of tags. Duplicates collapse.
func TagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// InvalidationEvent describes one completed tag invalidation.
type InvalidationEvent struct {
	Sender   string        `json:"sender"`
	Tags     []string      `json:"tags"`
	Matched  int           `json:"matched"`
	Removed  int           `json:"removed"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}
