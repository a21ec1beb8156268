package vm

// tableEntry is one slot of a Table. It is FREE when key is nil and
// value is Nil, TOMBSTONE when key is nil and value is True, and LIVE
// when key is non-nil. Boolean-true as the tombstone marker is a
// design commitment, not a requirement — any sentinel distinguishable
// from FREE works.
type tableEntry struct {
	key   *StringObj
	value Value
}

func (e *tableEntry) isFree() bool      { return e.key == nil && e.value == Nil }
func (e *tableEntry) isTombstone() bool { return e.key == nil && e.value == True }

// KeyEqual compares two interned-string keys for probe-chain matching.
// The general table uses IdentityEqual; the string pool uses
// StructuralEqual so that a not-yet-owned probe key can find its
// already-interned twin.
type KeyEqual func(a, b *StringObj) bool

// IdentityEqual compares keys by pointer identity.
func IdentityEqual(a, b *StringObj) bool { return a == b }

// StructuralEqual compares keys by byte content.
func StructuralEqual(a, b *StringObj) bool {
	if a == b {
		return true
	}
	if a.Hash != b.Hash || len(a.Chars) != len(b.Chars) {
		return false
	}
	return string(a.Chars) == string(b.Chars)
}

const tableMaxLoad = 0.75

// Table is an open-addressed hash table with linear probing, keyed by
// *StringObj. count tracks LIVE+TOMBSTONE slots so the load factor
// invariant accounts for tombstones the same as live entries.
type Table struct {
	entries []tableEntry
	count   int
	equal   KeyEqual
}

// NewTable creates an empty table using the given key-comparison
// strategy.
func NewTable(equal KeyEqual) *Table {
	return &Table{equal: equal}
}

// Len returns the number of live entries (not counting tombstones).
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

// Set inserts or updates key -> value. Returns true if key was not
// already present (including when its slot reuses a tombstone), and
// false when it overwrote a live entry.
func (t *Table) Set(key *StringObj, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow(growCapacity(len(t.entries)))
	}

	entry := t.findEntry(t.entries, key)
	isNewKey := entry.key == nil
	if isNewKey && entry.isFree() {
		t.count++
	}

	entry.key = key
	entry.value = value
	return isNewKey
}

// Get returns the value for key, and whether it was found.
func (t *Table) Get(key *StringObj) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	entry := t.findEntry(t.entries, key)
	if entry.key == nil {
		return Nil, false
	}
	return entry.value, true
}

// Delete removes key, replacing its slot with a tombstone so later
// probe chains through it stay intact. Returns whether key was present.
func (t *Table) Delete(key *StringObj) bool {
	if len(t.entries) == 0 {
		return false
	}
	entry := t.findEntry(t.entries, key)
	if entry.key == nil {
		return false
	}
	entry.key = nil
	entry.value = True // tombstone marker
	return true
}

// AddAll copies every live entry of other into t.
func (t *Table) AddAll(other *Table) {
	for i := range other.entries {
		e := &other.entries[i]
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// findKey probes for a key structurally/identically equal to probe and
// returns the canonical stored key pointer, if any live entry matches.
func (t *Table) findKey(probe *StringObj) (*StringObj, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	entry := t.findEntry(t.entries, probe)
	if entry.key == nil {
		return nil, false
	}
	return entry.key, true
}

// findEntry implements the shared linear-probing algorithm: it walks
// the chain starting at key.Hash mod capacity, remembering the first
// tombstone seen, and stops at either a matching live entry or a FREE
// slot (returning the remembered tombstone instead, if there was one,
// so callers reuse it for insertion).
func (t *Table) findEntry(entries []tableEntry, key *StringObj) *tableEntry {
	capacity := uint32(len(entries))
	index := key.Hash % capacity
	var tombstone *tableEntry

	for {
		entry := &entries[index]
		switch {
		case entry.key == nil:
			if entry.isFree() {
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
			// Tombstone.
			if tombstone == nil {
				tombstone = entry
			}
		case t.equal(entry.key, key):
			return entry
		}
		index = (index + 1) % capacity
	}
}

// growCapacity implements the geometric growth schedule: 8, then
// doubling.
func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// grow reallocates the entry array at newCapacity, dropping tombstones
// and recomputing count from live entries only, per §4.5's resize
// preconditions.
func (t *Table) grow(newCapacity int) {
	newEntries := make([]tableEntry, newCapacity)
	for i := range newEntries {
		newEntries[i].value = Nil
	}

	newCount := 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue
		}
		dst := t.findEntry(newEntries, old.key)
		dst.key = old.key
		dst.value = old.value
		newCount++
	}

	t.entries = newEntries
	t.count = newCount
}
