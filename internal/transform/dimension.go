package transform

// Dimension assigns dense 1-based surrogate keys to distinct natural keys in
// first-seen order.
type Dimension[K comparable] struct {
	ids  map[K]int64
	keys []K
}

// NewDimension returns an empty dimension.
func NewDimension[K comparable]() *Dimension[K] {
	return &Dimension[K]{ids: make(map[K]int64)}
}

// Add returns the surrogate key of k, assigning the next one if k is new.
func (d *Dimension[K]) Add(k K) int64 {
	if id, ok := d.ids[k]; ok {
		return id
	}
	d.keys = append(d.keys, k)
	id := int64(len(d.keys))
	d.ids[k] = id
	return id
}

// ID returns the surrogate key of k.
func (d *Dimension[K]) ID(k K) (int64, bool) {
	id, ok := d.ids[k]
	return id, ok
}

// Ref looks up a nullable natural key; nil and misses yield nil.
func (d *Dimension[K]) Ref(k *K) *int64 {
	if k == nil {
		return nil
	}
	id, ok := d.ids[*k]
	if !ok {
		return nil
	}
	return &id
}

// Len returns the number of rows.
func (d *Dimension[K]) Len() int { return len(d.keys) }

// Key returns the natural key for surrogate id.
func (d *Dimension[K]) Key(id int64) (K, bool) {
	if id < 1 || id > int64(len(d.keys)) {
		var zero K
		return zero, false
	}
	return d.keys[id-1], true
}

// Each calls fn for every row in surrogate key order.
func (d *Dimension[K]) Each(fn func(id int64, k K)) {
	for i, k := range d.keys {
		fn(int64(i+1), k)
	}
}
