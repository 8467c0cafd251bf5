package cache

import (
	"slices"

	"github.com/huykn/tagged-cache/types"
)

// record is the immutable value stored for a key. A Put swaps the whole
// record, so readers holding a pointer never see a partial update.
type record struct {
	value   string
	tags    []string
	version uint64
}

func (r *record) entry(key string) types.Entry {
	return types.Entry{
		Key:   key,
		Value: r.value,
		Tags:  slices.Clone(r.tags),
	}
}
