// Package operand implements the operand-memory model: a stack of frames of
// blocks of cells, tagged values, reference cells, and the addressing modes
// used to read and mutate them.
package operand

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

type Kind int

const (
	KindUninitialized Kind = iota
	KindUndefined
	KindNumber
	KindString
	KindBool
	KindArray
	KindDict
	KindRef
	KindFile
)

// NumSubtype distinguishes the integer/real flavor of a number value.
type NumSubtype int

const (
	SubInt NumSubtype = iota
	SubReal
)

// Ref addresses another cell by (frame, block, index). The generator never
// emits a reference to a reference, so deref never needs to loop more than
// once in practice, but Deref below follows the chain defensively.
type Ref struct {
	Frame, Block, Index int
}

func (r Ref) String() string { return fmt.Sprintf("&(%d,%d,%d)", r.Frame, r.Block, r.Index) }

type Array struct {
	Elems []Value
}

type Dict struct {
	keys []string
	m    map[string]Value
}

func NewDict() *Dict { return &Dict{m: make(map[string]Value)} }

func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.m[key]
	return v, ok
}

func (d *Dict) Set(key string, v Value) {
	if _, exists := d.m[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.m[key] = v
}

func (d *Dict) Delete(key string) {
	if _, exists := d.m[key]; exists {
		delete(d.m, key)
		for i, k := range d.keys {
			if k == key {
				d.keys = append(d.keys[:i], d.keys[i+1:]...)
				break
			}
		}
	}
}

func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dict) Len() int { return len(d.keys) }

// SortedKeys backs the sort builtin's dict mode; keys iterate in insertion
// order everywhere else (foreach, the keys builtin, display string).
func (d *Dict) SortedKeys() []string {
	out := d.Keys()
	slices.Sort(out)
	return out
}

// Value is a tagged union over the four-type lattice plus the plumbing
// kinds (reference, file handle, uninitialized, undefined). Every cell also
// carries Name, the interner index of the identifier it was declared under
// (0 = anonymous).
type Value struct {
	Kind    Kind
	Num     float64
	NumSub  NumSubtype
	Str     string
	Bool    bool
	Arr     *Array
	Dict    *Dict
	Ref     Ref
	File    *os.File
	Name    int
}

func Uninitialized() Value { return Value{Kind: KindUninitialized} }
func Undefined() Value     { return Value{Kind: KindUndefined} }

func Int(n int64) Value { return Value{Kind: KindNumber, Num: float64(n), NumSub: SubInt} }
func Real(n float64) Value { return Value{Kind: KindNumber, Num: n, NumSub: SubReal} }
func Str(s string) Value   { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value    { return Value{Kind: KindBool, Bool: b} }
func RefVal(r Ref) Value   { return Value{Kind: KindRef, Ref: r} }
func NewArrayValue() Value { return Value{Kind: KindArray, Arr: &Array{}} }
func NewDictValue() Value  { return Value{Kind: KindDict, Dict: NewDict()} }

func (v Value) IsCollection() bool { return v.Kind == KindArray || v.Kind == KindDict }

// StringKey renders a value as a dictionary key, per §3's "mapping from a
// stringified key to a value".
func StringKey(v Value) string { return ToDisplayString(v) }

func ToDisplayString(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		if v.NumSub == SubInt {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindArray:
		parts := make([]string, len(v.Arr.Elems))
		for i, e := range v.Arr.Elems {
			parts[i] = ToDisplayString(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindDict:
		parts := make([]string, 0, v.Dict.Len())
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			parts = append(parts, k+":"+ToDisplayString(val))
		}
		return "{" + strings.Join(parts, ",") + "}"
	case KindUninitialized:
		return "<uninitialized>"
	case KindUndefined:
		return "<undefined>"
	case KindRef:
		return v.Ref.String()
	case KindFile:
		return "<file>"
	default:
		return ""
	}
}

func (v Value) String() string { return ToDisplayString(v) }
