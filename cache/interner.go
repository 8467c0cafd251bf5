package cache

import (
	"slices"
	"strconv"
	"strings"
)

// internKey encodes a tag list so that distinct lists never collide.
// Order is significant: entries echo their tags back as given.
func internKey(tags []string) string {
	var b strings.Builder
	for _, tag := range tags {
		b.WriteString(strconv.Itoa(len(tag)))
		b.WriteByte(':')
		b.WriteString(tag)
	}
	return b.String()
}

// NoOpInterner returns a private copy of every tag list.
type NoOpInterner struct{}

// Intern returns a copy of tags.
func (n *NoOpInterner) Intern(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return slices.Clone(tags)
}

// Close is a no-op.
func (n *NoOpInterner) Close() {}

// Metrics returns zero metrics.
func (n *NoOpInterner) Metrics() InternerMetrics {
	return InternerMetrics{}
}
