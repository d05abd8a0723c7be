package builtins

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"corelang/internal/operand"
)

// readers is keyed by the KindFile cell's *os.File pointer identity via a
// side table of *bufio.Reader, since Value carries only the handle.
var readers = map[*os.File]*bufio.Reader{}

// Call dispatches one built-in invocation. args are already dereferenced
// values in call order; the result is what the interpreter pushes as the
// call's return value.
func Call(id int, args []operand.Value) (operand.Value, error) {
	switch id {
	case Length:
		return lengthOf(args[0])
	case Substring:
		return substring(args[0], args[1], args[2])
	case Locate:
		return locate(args[0], args[1])
	case Replace:
		return replace(args[0], args[1], args[2])
	case Match:
		return match(args[0], args[1])
	case Capture:
		return capture(args[0], args[1])
	case Split:
		return splitStr(args[0], args[1])
	case Regex:
		return regexFind(args[0], args[1])
	case TypeOf:
		return operand.Str(typeName(args[0])), nil
	case Dump:
		return operand.Str(pretty.Sprint(describe(args[0]))), nil
	case Keys:
		return keysOf(args[0])
	case Sort:
		return sortOf(args[0])
	case Push:
		return args[0], operand.AppendTo(args[0], args[1])
	case Pop:
		return popOf(args[0])
	case Insert:
		return args[0], operand.InsertInto(args[0], args[1], args[2])
	case Delete:
		return deleteOf(args[0], args[1])
	case Contains:
		return containsOf(args[0], args[1])
	case AppendFn:
		return args[0], operand.AppendTo(args[0], args[1])
	case Open:
		return openFile(args[0], args[1])
	case ReadLine:
		return readLine(args[0])
	case WriteLine:
		return writeLine(args[0], args[1])
	case Close:
		return closeFile(args[0])
	case Humanize:
		return operand.Str(humanizeOf(args[0])), nil
	case UUID:
		return operand.Str(uuid.NewString()), nil
	default:
		return operand.Undefined(), errors.Errorf("unknown builtin id %d", id)
	}
}

func lengthOf(v operand.Value) (operand.Value, error) {
	switch v.Kind {
	case operand.KindString:
		return operand.Int(int64(len(v.Str))), nil
	case operand.KindArray:
		return operand.Int(int64(len(v.Arr.Elems))), nil
	case operand.KindDict:
		return operand.Int(int64(v.Dict.Len())), nil
	default:
		return operand.Undefined(), nil
	}
}

func substring(s, start, end operand.Value) (operand.Value, error) {
	if s.Kind != operand.KindString {
		return operand.Undefined(), errors.New("substring: not a string")
	}
	runes := []rune(s.Str)
	lo, hi := int(start.Num), int(end.Num)
	if lo < 0 {
		lo = 0
	}
	if hi > len(runes) {
		hi = len(runes)
	}
	if lo > hi {
		return operand.Str(""), nil
	}
	return operand.Str(string(runes[lo:hi])), nil
}

func locate(s, needle operand.Value) (operand.Value, error) {
	if s.Kind != operand.KindString || needle.Kind != operand.KindString {
		return operand.Undefined(), nil
	}
	idx := strings.Index(s.Str, needle.Str)
	return operand.Int(int64(idx)), nil
}

func replace(s, from, to operand.Value) (operand.Value, error) {
	if s.Kind != operand.KindString {
		return operand.Undefined(), nil
	}
	return operand.Str(strings.ReplaceAll(s.Str, from.Str, to.Str)), nil
}

func match(s, pattern operand.Value) (operand.Value, error) {
	re, err := regexp.Compile(pattern.Str)
	if err != nil {
		return operand.Undefined(), errors.Wrap(err, "match")
	}
	return operand.Bool(re.MatchString(s.Str)), nil
}

func capture(s, pattern operand.Value) (operand.Value, error) {
	re, err := regexp.Compile(pattern.Str)
	if err != nil {
		return operand.Undefined(), errors.Wrap(err, "capture")
	}
	groups := re.FindStringSubmatch(s.Str)
	arr := operand.NewArrayValue()
	for _, g := range groups {
		arr.Arr.Elems = append(arr.Arr.Elems, operand.Str(g))
	}
	return arr, nil
}

func splitStr(s, sep operand.Value) (operand.Value, error) {
	parts := strings.Split(s.Str, sep.Str)
	arr := operand.NewArrayValue()
	for _, p := range parts {
		arr.Arr.Elems = append(arr.Arr.Elems, operand.Str(p))
	}
	return arr, nil
}

func regexFind(s, pattern operand.Value) (operand.Value, error) {
	re, err := regexp.Compile(pattern.Str)
	if err != nil {
		return operand.Undefined(), errors.Wrap(err, "regex")
	}
	return operand.Str(re.FindString(s.Str)), nil
}

func typeName(v operand.Value) string {
	switch v.Kind {
	case operand.KindNumber:
		if v.NumSub == operand.SubInt {
			return "int"
		}
		return "real"
	case operand.KindString:
		return "string"
	case operand.KindBool:
		return "bool"
	case operand.KindArray:
		return "array"
	case operand.KindDict:
		return "dict"
	case operand.KindUninitialized:
		return "uninitialized"
	case operand.KindUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// describe converts a Value into plain Go data kr/pretty can walk, since
// Value's internal Dict type keeps its key order private.
func describe(v operand.Value) interface{} {
	switch v.Kind {
	case operand.KindArray:
		out := make([]interface{}, len(v.Arr.Elems))
		for i, e := range v.Arr.Elems {
			out[i] = describe(e)
		}
		return out
	case operand.KindDict:
		out := make(map[string]interface{}, v.Dict.Len())
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			out[k] = describe(val)
		}
		return out
	default:
		return operand.ToDisplayString(v)
	}
}

func keysOf(v operand.Value) (operand.Value, error) {
	if v.Kind != operand.KindDict {
		return operand.Undefined(), errors.New("keys: not a dict")
	}
	arr := operand.NewArrayValue()
	for _, k := range v.Dict.Keys() {
		arr.Arr.Elems = append(arr.Arr.Elems, operand.Str(k))
	}
	return arr, nil
}

func sortOf(v operand.Value) (operand.Value, error) {
	if v.Kind == operand.KindDict {
		out := operand.NewArrayValue()
		for _, k := range v.Dict.SortedKeys() {
			out.Arr.Elems = append(out.Arr.Elems, operand.Str(k))
		}
		return out, nil
	}
	if v.Kind != operand.KindArray {
		return operand.Undefined(), errors.New("sort: not an array")
	}
	out := operand.NewArrayValue()
	out.Arr.Elems = append(out.Arr.Elems, v.Arr.Elems...)
	sort.SliceStable(out.Arr.Elems, func(i, j int) bool {
		a, b := out.Arr.Elems[i], out.Arr.Elems[j]
		if a.Kind == operand.KindNumber && b.Kind == operand.KindNumber {
			return a.Num < b.Num
		}
		return operand.ToDisplayString(a) < operand.ToDisplayString(b)
	})
	return out, nil
}

func popOf(v operand.Value) (operand.Value, error) {
	if v.Kind != operand.KindArray || len(v.Arr.Elems) == 0 {
		return operand.Undefined(), nil
	}
	n := len(v.Arr.Elems) - 1
	last := v.Arr.Elems[n]
	v.Arr.Elems = v.Arr.Elems[:n]
	return last, nil
}

func deleteOf(v, key operand.Value) (operand.Value, error) {
	switch v.Kind {
	case operand.KindDict:
		v.Dict.Delete(operand.StringKey(key))
		return v, nil
	case operand.KindArray:
		idx := int(key.Num)
		if idx < 0 || idx >= len(v.Arr.Elems) {
			return v, errors.Errorf("delete: index %d out of range", idx)
		}
		v.Arr.Elems = append(v.Arr.Elems[:idx], v.Arr.Elems[idx+1:]...)
		return v, nil
	default:
		return operand.Undefined(), errors.New("delete: not a collection")
	}
}

func containsOf(v, needle operand.Value) (operand.Value, error) {
	switch v.Kind {
	case operand.KindArray:
		for _, e := range v.Arr.Elems {
			if operand.ToDisplayString(e) == operand.ToDisplayString(needle) && e.Kind == needle.Kind {
				return operand.Bool(true), nil
			}
		}
		return operand.Bool(false), nil
	case operand.KindDict:
		_, ok := v.Dict.Get(operand.StringKey(needle))
		return operand.Bool(ok), nil
	case operand.KindString:
		return operand.Bool(strings.Contains(v.Str, needle.Str)), nil
	default:
		return operand.Bool(false), nil
	}
}

func openFile(path, mode operand.Value) (operand.Value, error) {
	var f *os.File
	var err error
	switch mode.Str {
	case "w":
		f, err = os.Create(path.Str)
	default:
		f, err = os.Open(path.Str)
	}
	if err != nil {
		return operand.Undefined(), errors.Wrap(err, "open")
	}
	readers[f] = bufio.NewReader(f)
	return operand.Value{Kind: operand.KindFile, File: f}, nil
}

func readLine(h operand.Value) (operand.Value, error) {
	if h.Kind != operand.KindFile || h.File == nil {
		return operand.Undefined(), errors.New("readline: not a file handle")
	}
	r, ok := readers[h.File]
	if !ok {
		r = bufio.NewReader(h.File)
		readers[h.File] = r
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return operand.Undefined(), nil
	}
	return operand.Str(strings.TrimRight(line, "\r\n")), nil
}

func writeLine(h, s operand.Value) (operand.Value, error) {
	if h.Kind != operand.KindFile || h.File == nil {
		return operand.Undefined(), errors.New("writeline: not a file handle")
	}
	_, err := h.File.WriteString(s.Str + "\n")
	return operand.Bool(err == nil), err
}

func closeFile(h operand.Value) (operand.Value, error) {
	if h.Kind != operand.KindFile || h.File == nil {
		return operand.Undefined(), nil
	}
	delete(readers, h.File)
	return operand.Bool(true), h.File.Close()
}

func humanizeOf(v operand.Value) string {
	if v.Kind == operand.KindNumber {
		return humanize.Comma(int64(v.Num))
	}
	return operand.ToDisplayString(v)
}
