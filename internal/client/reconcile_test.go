package client

import (
	"reflect"
	"testing"
)

func TestReconcileInitialLoad(t *testing.T) {
	sub, unsub := Reconcile([]string{"a", "b", "c"}, nil)
	if !reflect.DeepEqual(sub, []string{"a", "b", "c"}) {
		t.Fatalf("subscribe = %v", sub)
	}
	if len(unsub) != 0 {
		t.Fatalf("unsubscribe = %v, want none", unsub)
	}
}

func TestReconcilePageChange(t *testing.T) {
	sub, unsub := Reconcile([]string{"b", "c", "d"}, []string{"a", "b", "c"})
	if !reflect.DeepEqual(sub, []string{"d"}) {
		t.Fatalf("subscribe = %v, want [d]", sub)
	}
	if !reflect.DeepEqual(unsub, []string{"a"}) {
		t.Fatalf("unsubscribe = %v, want [a]", unsub)
	}
}

func TestReconcileNoChange(t *testing.T) {
	sub, unsub := Reconcile([]string{"a", "b"}, []string{"a", "b"})
	if len(sub) != 0 || len(unsub) != 0 {
		t.Fatalf("want no work, got sub=%v unsub=%v", sub, unsub)
	}
}

func TestReconcileClearsEverything(t *testing.T) {
	sub, unsub := Reconcile(nil, []string{"a", "b"})
	if len(sub) != 0 {
		t.Fatalf("subscribe = %v, want none", sub)
	}
	if !reflect.DeepEqual(unsub, []string{"a", "b"}) {
		t.Fatalf("unsubscribe = %v", unsub)
	}
}

func TestReconcileCollapsesDuplicates(t *testing.T) {
	sub, _ := Reconcile([]string{"a", "a", "b", "a"}, nil)
	if !reflect.DeepEqual(sub, []string{"a", "b"}) {
		t.Fatalf("subscribe = %v, want [a b]", sub)
	}
}

func TestReconcilePreservesOrder(t *testing.T) {
	sub, unsub := Reconcile([]string{"z", "m", "a"}, []string{"q", "p"})
	if !reflect.DeepEqual(sub, []string{"z", "m", "a"}) {
		t.Fatalf("subscribe order = %v", sub)
	}
	if !reflect.DeepEqual(unsub, []string{"q", "p"}) {
		t.Fatalf("unsubscribe order = %v", unsub)
	}
}
