package resource

// Map is a keyed collection of resources. Keys are unique and insertion order
// is irrelevant. A map is owned exclusively by its repository, which guards
// access to the map itself; the resources it hands out carry their own locks
// and may outlive the map access.
type Map[ID comparable, T any] map[ID]*Resource[T]

// NewMap returns an empty resource map.
func NewMap[ID comparable, T any]() Map[ID, T] {
	return make(Map[ID, T])
}

// Get returns the resource stored under id, if any.
func (m Map[ID, T]) Get(id ID) (*Resource[T], bool) {
	res, ok := m[id]
	return res, ok
}

// Contains reports whether a resource is stored under id.
func (m Map[ID, T]) Contains(id ID) bool {
	_, ok := m[id]
	return ok
}

// Set stores the resource under id, replacing any previous one.
func (m Map[ID, T]) Set(id ID, res *Resource[T]) {
	m[id] = res
}

// Delete removes the resource stored under id, reporting whether it existed.
func (m Map[ID, T]) Delete(id ID) bool {
	if _, ok := m[id]; !ok {
		return false
	}
	delete(m, id)
	return true
}

// Len returns the number of stored resources.
func (m Map[ID, T]) Len() int {
	return len(m)
}

// Each calls fn for every stored resource until fn returns false.
func (m Map[ID, T]) Each(fn func(ID, *Resource[T]) bool) {
	for id, res := range m {
		if !fn(id, res) {
			return
		}
	}
}
