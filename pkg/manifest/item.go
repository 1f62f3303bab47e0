package manifest

// Walk visits items depth-first in document order. Depth starts at 0 for
// the given items. Returning false from fn stops the walk.
func Walk(items []Item, fn func(item *Item, depth int) bool) {
	walk(items, 0, fn)
}

func walk(items []Item, depth int, fn func(*Item, int) bool) bool {
	for i := range items {
		if !fn(&items[i], depth) {
			return false
		}
		if !walk(items[i].Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// FirstLaunchable returns the first item, depth-first in document order,
// that references a resource. This is the item an LMS launches when a
// learner enters the organization.
func FirstLaunchable(items []Item) (*Item, bool) {
	var found *Item
	Walk(items, func(it *Item, _ int) bool {
		if it.ResourceRef != "" {
			found = it
			return false
		}
		return true
	})
	return found, found != nil
}

// CountItems returns the number of items in the tree, including nested ones.
func CountItems(items []Item) int {
	n := 0
	Walk(items, func(*Item, int) bool {
		n++
		return true
	})
	return n
}
