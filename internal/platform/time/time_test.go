package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatal("zero time should map to nil")
	}
	now := time.Now()
	p := Ptr(now)
	if p == nil || !p.Equal(now) {
		t.Fatalf("Ptr(%v) = %v", now, p)
	}
}

func TestToSecond(t *testing.T) {
	in := time.Date(2009, time.November, 10, 23, 0, 0, 987654321, time.UTC)
	want := time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)
	if got := ToSecond(in); !got.Equal(want) {
		t.Fatalf("ToSecond = %v, want %v", got, want)
	}
}
