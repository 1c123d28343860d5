package invidious

import "testing"

func TestObjectMarshalPreservesInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("b", 1)
	obj.Set("a", 2)
	obj.Set("c", 3)
	obj.Set("a", 4)

	data, err := obj.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"b":1,"a":4,"c":3}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}

func TestObjectDelete(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Delete("a")

	if obj.Has("a") {
		t.Fatal("a still present after delete")
	}
	keys := obj.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("keys = %v, want [b]", keys)
	}
}

func TestObjectReorder(t *testing.T) {
	obj := NewObject()
	obj.Set("c", 1)
	obj.Set("a", 2)
	obj.Set("x", 3)
	obj.Reorder([]string{"a", "b", "c"})

	keys := obj.Keys()
	want := []string{"a", "c", "x"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}
