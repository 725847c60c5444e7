// Package transition emits the line-oriented protocol that communicates
// PATH and environment changes back to the invoking shell's integration
// script. The core process never mutates its own environment or its
// parent's; it only prints this protocol to stdout.
package transition

import (
	"bufio"
	"io"
)

// OpKind tags a single transition line.
type OpKind int

const (
	OpPath OpKind = iota
	OpSet
	OpUnset
)

// Op is one line of the transition protocol. Order matters: the consuming
// shell script applies operations in the order they are written.
type Op struct {
	Kind  OpKind
	Name  string // Set, Unset
	Value string // Path, Set
}

// PathOp constructs the PATH line, which by convention comes first.
func PathOp(value string) Op { return Op{Kind: OpPath, Value: value} }

// SetOp constructs a SET line.
func SetOp(name, value string) Op { return Op{Kind: OpSet, Name: name, Value: value} }

// UnsetOp constructs an UNSET line.
func UnsetOp(name string) Op { return Op{Kind: OpUnset, Name: name} }

// Emit writes ops to w in order, one tab-separated line each:
// "PATH\t<value>", "SET\t<name>\t<value>", "UNSET\t<name>".
func Emit(w io.Writer, ops []Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		switch op.Kind {
		case OpPath:
			if _, err := bw.WriteString("PATH\t" + op.Value + "\n"); err != nil {
				return err
			}
		case OpSet:
			if _, err := bw.WriteString("SET\t" + op.Name + "\t" + op.Value + "\n"); err != nil {
				return err
			}
		case OpUnset:
			if _, err := bw.WriteString("UNSET\t" + op.Name + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
