package transition

import (
	"bytes"
	"testing"
)

func TestEmitOrderAndFormat(t *testing.T) {
	var buf bytes.Buffer
	ops := []Op{
		PathOp("/a:/b"),
		SetOp("FOO", "bar"),
		UnsetOp("BAZ"),
	}
	if err := Emit(&buf, ops); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "PATH\t/a:/b\nSET\tFOO\tbar\nUNSET\tBAZ\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEmitEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Emit(&buf, nil); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected empty output, got %q", buf.String())
	}
}
