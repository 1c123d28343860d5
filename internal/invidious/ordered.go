package invidious

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Object is a JSON object that remembers insertion order. The projector
// re-emits keys in schema order; Go maps cannot guarantee that, so the
// handler layer marshals these instead.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set inserts or replaces a key. Replacing keeps the original position.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Reorder re-emits the object with the given keys first, in the given
// order; keys not listed keep their relative order afterwards.
func (o *Object) Reorder(order []string) {
	reordered := make([]string, 0, len(o.keys))
	seen := make(map[string]bool, len(o.keys))
	for _, k := range order {
		if _, ok := o.values[k]; ok && !seen[k] {
			reordered = append(reordered, k)
			seen[k] = true
		}
	}
	for _, k := range o.keys {
		if !seen[k] {
			reordered = append(reordered, k)
			seen[k] = true
		}
	}
	o.keys = reordered
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
