// Package dist caches compiled bytecode chunks keyed by the sha256 hash
// of their source text, so re-evaluating identical expressions skips
// the compile step, both within one process and across separate
// invocations of the driver against the same cache directory.
package dist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/lumen-lang/lumen/vm"
)

// Hash returns the content address for a piece of source text.
func Hash(source string) [32]byte {
	return sha256.Sum256([]byte(source))
}

// wireValue is the tagged wire form for a constant-pool entry. Values
// are one of the four core variants; object references are narrowed to
// their string content since strings are the only object kind this
// language fragment produces.
type wireValue struct {
	Kind   byte    `cbor:"1,keyasint"`
	Number float64 `cbor:"2,keyasint,omitempty"`
	Bool   bool    `cbor:"3,keyasint,omitempty"`
	String string  `cbor:"4,keyasint,omitempty"`
}

const (
	wireNumber byte = iota
	wireBool
	wireNil
	wireString
)

func encodeValue(v vm.Value) (wireValue, error) {
	switch {
	case v.IsFloat():
		return wireValue{Kind: wireNumber, Number: v.Number()}, nil
	case v.IsNil():
		return wireValue{Kind: wireNil}, nil
	case v.IsBool():
		return wireValue{Kind: wireBool, Bool: v == vm.True}, nil
	case v.IsString():
		return wireValue{Kind: wireString, String: v.AsStringObj().Content()}, nil
	default:
		return wireValue{}, fmt.Errorf("dist: unencodable value %v", v)
	}
}

func decodeValue(w wireValue, strings *vm.StringPool) (vm.Value, error) {
	switch w.Kind {
	case wireNumber:
		return vm.Number(w.Number), nil
	case wireBool:
		return vm.Bool(w.Bool), nil
	case wireNil:
		return vm.Nil, nil
	case wireString:
		return vm.StringValue(strings.Intern([]byte(w.String))), nil
	default:
		return vm.Nil, fmt.Errorf("dist: unknown wire value kind %d", w.Kind)
	}
}

// wireChunk is the CBOR-serializable projection of a vm.Chunk.
type wireChunk struct {
	Code      []byte      `cbor:"1,keyasint"`
	Lines     []int       `cbor:"2,keyasint"`
	Constants []wireValue `cbor:"3,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to build CBOR encode mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a compiled chunk to canonical CBOR bytes.
func Marshal(c *vm.Chunk) ([]byte, error) {
	w := wireChunk{Code: c.Code, Lines: c.Lines}
	for _, v := range c.Constants {
		wv, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		w.Constants = append(w.Constants, wv)
	}
	return cborEncMode.Marshal(w)
}

// Unmarshal deserializes chunk bytes produced by Marshal. strings is
// the pool new string constants intern against.
func Unmarshal(data []byte, strings *vm.StringPool) (*vm.Chunk, error) {
	var w wireChunk
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("dist: unmarshal chunk: %w", err)
	}
	c := &vm.Chunk{Code: w.Code, Lines: w.Lines}
	for _, wv := range w.Constants {
		v, err := decodeValue(wv, strings)
		if err != nil {
			return nil, err
		}
		c.Constants = append(c.Constants, v)
	}
	return c, nil
}

// Cache is a content-addressed store of compiled chunks, keyed by the
// sha256 hash of the source that produced them. Each entry is written
// to its own file under dir, one file per hash, so a cache populated
// by one process (one `lumen file.lox` invocation, say) is visible to
// the next process that opens the same directory; entries are also
// held in memory to avoid re-reading a file already seen this process.
type Cache struct {
	mu      sync.RWMutex
	entries map[[32]byte][]byte
	dir     string
}

// NewCache creates a cache backed by dir, creating the directory if it
// does not already exist.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("dist: creating cache directory: %w", err)
	}
	return &Cache{entries: make(map[[32]byte][]byte), dir: dir}, nil
}

func (c *Cache) entryPath(hash [32]byte) string {
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".chunk")
}

// Put stores chunk under the content hash of source, replacing any
// existing entry, both in memory and on disk. A nil Cache (the chunk
// cache disabled via config) is a silent no-op, so callers don't need
// to branch on whether caching is enabled.
func (c *Cache) Put(source string, chunk *vm.Chunk) error {
	if c == nil {
		return nil
	}
	encoded, err := Marshal(chunk)
	if err != nil {
		return err
	}
	hash := Hash(source)
	c.mu.Lock()
	c.entries[hash] = encoded
	c.mu.Unlock()
	if err := os.WriteFile(c.entryPath(hash), encoded, 0644); err != nil {
		return fmt.Errorf("dist: writing cache entry: %w", err)
	}
	return nil
}

// Get returns the cached chunk for source, if present, checking the
// in-memory map first and then falling back to the on-disk entry
// (populating the in-memory map on a disk hit). A nil Cache always
// misses.
func (c *Cache) Get(source string, strings *vm.StringPool) (*vm.Chunk, bool) {
	if c == nil {
		return nil, false
	}
	hash := Hash(source)

	c.mu.RLock()
	encoded, ok := c.entries[hash]
	c.mu.RUnlock()

	if !ok {
		data, err := os.ReadFile(c.entryPath(hash))
		if err != nil {
			return nil, false
		}
		encoded = data
		c.mu.Lock()
		c.entries[hash] = encoded
		c.mu.Unlock()
	}

	chunk, err := Unmarshal(encoded, strings)
	if err != nil {
		return nil, false
	}
	return chunk, true
}

// Len returns the number of chunks resident in memory (entries that
// exist only on disk and haven't been read this process don't count).
// A nil Cache has length 0.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
