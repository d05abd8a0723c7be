package operand

import "github.com/pkg/errors"

// IndexInto walks a collection n levels deep using the given index values,
// per §4.7's multi-dimensional fetch. Out-of-range steps yield Undefined;
// running out of indices before the collection bottoms out returns the
// remaining inner collection.
func IndexInto(v Value, indices []Value) Value {
	cur := v
	for _, ix := range indices {
		switch cur.Kind {
		case KindArray:
			i := int(ix.Num)
			if i < 0 || i >= len(cur.Arr.Elems) {
				return Undefined()
			}
			cur = cur.Arr.Elems[i]
		case KindDict:
			key := StringKey(ix)
			val, ok := cur.Dict.Get(key)
			if !ok {
				return Undefined()
			}
			cur = val
		default:
			return Undefined()
		}
	}
	return cur
}

// UpdateIndexed replaces the element reached by walking indices into v,
// mutating the underlying collection in place (collections are reference
// types per invariant 4 of §3).
func UpdateIndexed(v Value, indices []Value, newVal Value) error {
	cur := v
	for i, ix := range indices {
		last := i == len(indices)-1
		switch cur.Kind {
		case KindArray:
			idx := int(ix.Num)
			if idx < 0 || idx >= len(cur.Arr.Elems) {
				return errors.Errorf("index %d out of range for array of length %d", idx, len(cur.Arr.Elems))
			}
			if last {
				cur.Arr.Elems[idx] = newVal
				return nil
			}
			cur = cur.Arr.Elems[idx]
		case KindDict:
			key := StringKey(ix)
			if last {
				cur.Dict.Set(key, newVal)
				return nil
			}
			val, ok := cur.Dict.Get(key)
			if !ok {
				return errors.Errorf("key %q not found", key)
			}
			cur = val
		default:
			return errors.Errorf("cannot index into value of kind %v", cur.Kind)
		}
	}
	return nil
}

func AppendTo(v Value, elem Value) error {
	if v.Kind != KindArray {
		return errors.Errorf("append target is not an array")
	}
	v.Arr.Elems = append(v.Arr.Elems, elem)
	return nil
}

func InsertInto(v Value, key, val Value) error {
	if v.Kind != KindDict {
		return errors.Errorf("insert target is not a dictionary")
	}
	v.Dict.Set(StringKey(key), val)
	return nil
}
