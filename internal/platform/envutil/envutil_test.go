package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	if got := Duration("X_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("Duration: want=90s got=%s", got)
	}
	t.Setenv("X_DUR", "120")
	if got := Duration("X_DUR", time.Minute); got != 2*time.Minute {
		t.Fatalf("Duration seconds: want=2m got=%s", got)
	}
	t.Setenv("X_DUR", "soon")
	if got := Duration("X_DUR", time.Minute); got != time.Minute {
		t.Fatalf("Duration fallback: want=1m got=%s", got)
	}
}

func TestListAndBool(t *testing.T) {
	t.Setenv("X_LIST", " a, ,b ")
	got := List("X_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
	t.Setenv("X_BOOL", "off")
	if Bool("X_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	t.Setenv("X_BOOL", "maybe")
	if !Bool("X_BOOL", true) {
		t.Fatalf("Bool: expected default true")
	}
}
