package vm

import "testing"

func TestChunkWriteByteKeepsCodeAndLinesParallel(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpTrue, 1)
	c.WriteOp(OpReturn, 2)

	if len(c.Code) != len(c.Lines) {
		t.Fatalf("len(Code)=%d, len(Lines)=%d", len(c.Code), len(c.Lines))
	}
	wantLines := []int{1, 1, 2}
	for i, want := range wantLines {
		if c.Lines[i] != want {
			t.Errorf("Lines[%d] = %d, want %d", i, c.Lines[i], want)
		}
	}
}

func TestChunkAddConstant(t *testing.T) {
	c := NewChunk()
	i0 := c.AddConstant(Number(1))
	i1 := c.AddConstant(Number(2))
	if i0 != 0 || i1 != 1 {
		t.Fatalf("indices = %d, %d, want 0, 1", i0, i1)
	}
	if len(c.Constants) != 2 {
		t.Fatalf("len(Constants) = %d, want 2", len(c.Constants))
	}
}

func TestChunkEmitConstant(t *testing.T) {
	c := NewChunk()
	c.EmitConstant(Number(42), 7)

	if len(c.Code) != 2 {
		t.Fatalf("len(Code) = %d, want 2", len(c.Code))
	}
	if Opcode(c.Code[0]) != OpConstant {
		t.Errorf("Code[0] = %v, want OP_CONSTANT", Opcode(c.Code[0]))
	}
	if c.Constants[c.Code[1]].Number() != 42 {
		t.Errorf("constant at emitted index = %v, want 42", c.Constants[c.Code[1]])
	}
	if c.Lines[0] != 7 || c.Lines[1] != 7 {
		t.Errorf("emitted bytes not tagged with line 7: %v", c.Lines)
	}
}

func TestChunkAddConstantPanicsAtCapacity(t *testing.T) {
	c := NewChunk()
	for i := 0; i < MaxConstants; i++ {
		c.AddConstant(Number(float64(i)))
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when exceeding MaxConstants")
		}
	}()
	c.AddConstant(Number(999))
}

func TestChunkLineAtOutOfRange(t *testing.T) {
	c := NewChunk()
	if line := c.LineAt(0); line != 0 {
		t.Errorf("LineAt on empty chunk = %d, want 0", line)
	}
	c.WriteOp(OpReturn, 3)
	if line := c.LineAt(0); line != 3 {
		t.Errorf("LineAt(0) = %d, want 3", line)
	}
	if line := c.LineAt(5); line != 0 {
		t.Errorf("LineAt(5) out of range = %d, want 0", line)
	}
}

func TestChunkFree(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpReturn, 1)
	c.AddConstant(Number(1))
	c.Free()
	if len(c.Code) != 0 || len(c.Lines) != 0 || len(c.Constants) != 0 {
		t.Error("Free did not reset chunk to empty")
	}
}
