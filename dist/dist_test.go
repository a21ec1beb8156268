package dist

import (
	"testing"

	"github.com/lumen-lang/lumen/vm"
)

func TestHashIsDeterministic(t *testing.T) {
	a := Hash("1 + 2")
	b := Hash("1 + 2")
	if a != b {
		t.Error("Hash is not deterministic for identical input")
	}
	if Hash("1 + 2") == Hash("1 + 3") {
		t.Error("Hash collided for distinct input")
	}
}

func buildChunk(strings *vm.StringPool) *vm.Chunk {
	c := vm.NewChunk()
	c.EmitConstant(vm.Number(42), 1)
	c.EmitConstant(vm.StringValue(strings.Intern([]byte("hi"))), 1)
	c.WriteOp(vm.OpNil, 2)
	c.WriteOp(vm.OpTrue, 2)
	c.WriteOp(vm.OpReturn, 2)
	return c
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	strings := vm.NewStringPool()
	original := buildChunk(strings)

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decodeStrings := vm.NewStringPool()
	decoded, err := Unmarshal(data, decodeStrings)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(decoded.Code) != len(original.Code) {
		t.Fatalf("Code length = %d, want %d", len(decoded.Code), len(original.Code))
	}
	for i := range original.Code {
		if decoded.Code[i] != original.Code[i] {
			t.Fatalf("Code[%d] = %d, want %d", i, decoded.Code[i], original.Code[i])
		}
	}
	if len(decoded.Constants) != len(original.Constants) {
		t.Fatalf("Constants length = %d, want %d", len(decoded.Constants), len(original.Constants))
	}
	if decoded.Constants[0].Number() != 42 {
		t.Errorf("Constants[0] = %v, want 42", decoded.Constants[0])
	}
	if decoded.Constants[1].AsStringObj().Content() != "hi" {
		t.Errorf("Constants[1] = %v, want \"hi\"", decoded.Constants[1])
	}
}

func TestCachePutGet(t *testing.T) {
	strings := vm.NewStringPool()
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	chunk := buildChunk(strings)

	if err := cache.Put("1 + 2", chunk); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := cache.Get("1 + 2", vm.NewStringPool())
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(got.Code) != len(chunk.Code) {
		t.Error("cached chunk code does not match the original")
	}

	if _, ok := cache.Get("no such source", vm.NewStringPool()); ok {
		t.Error("expected a cache miss for unseen source")
	}

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	strings := vm.NewStringPool()
	chunk := buildChunk(strings)

	first, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if err := first.Put("1 + 2", chunk); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A fresh Cache instance over the same directory, as a second
	// process invocation would construct, should see the entry the
	// first instance wrote to disk without ever calling Put itself.
	second, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	got, ok := second.Get("1 + 2", vm.NewStringPool())
	if !ok {
		t.Fatal("expected a cache hit from a fresh instance over the same directory")
	}
	if len(got.Code) != len(chunk.Code) {
		t.Error("cached chunk code does not match the original")
	}
}

func TestNilCacheIsSafeNoop(t *testing.T) {
	var cache *Cache

	strings := vm.NewStringPool()
	chunk := buildChunk(strings)

	if err := cache.Put("1 + 2", chunk); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if _, ok := cache.Get("1 + 2", vm.NewStringPool()); ok {
		t.Error("expected a nil cache to always miss")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for nil cache", cache.Len())
	}
}
