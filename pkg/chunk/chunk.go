// Package chunk splits list views into fixed-size pages.
package chunk

// DefaultSize is the page size used by the bot list views.
const DefaultSize = 10

type Page[T any] struct {
	Items  []T
	Index  int // 1-based, after clamping
	Total  int // number of pages, 0 for an empty list
	Offset int // position of Items[0] in the full list
}

func (p Page[T]) HasPrev() bool { return p.Index > 1 }
func (p Page[T]) HasNext() bool { return p.Index < p.Total }

// Paginate returns page index of items. A non-positive index selects the last
// page, an index past the end is clamped down to the last non-empty page.
func Paginate[T any](items []T, index, size int) Page[T] {
	if size <= 0 {
		size = DefaultSize
	}
	total := (len(items) + size - 1) / size
	if total == 0 {
		return Page[T]{Index: 1}
	}
	if index <= 0 || index > total {
		index = total
	}
	start := (index - 1) * size
	end := min(start+size, len(items))
	return Page[T]{
		Items:  items[start:end],
		Index:  index,
		Total:  total,
		Offset: start,
	}
}
