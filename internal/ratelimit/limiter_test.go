package ratelimit

import (
	"testing"
	"time"
)

func TestAllow(t *testing.T) {
	l := New(1, 2)

	if !l.Allow("/prices") || !l.Allow("/prices") {
		t.Fatal("Allow() denied an event within the burst")
	}
	if l.Allow("/prices") {
		t.Error("Allow() permitted an event beyond the burst")
	}
	if !l.Allow("/") {
		t.Error("Allow() shared a bucket between keys")
	}
}

func TestAllow_Unlimited(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatalf("Allow() denied event %d with limiting disabled", i)
		}
	}
}

func TestAllow_Refills(t *testing.T) {
	l := New(60000, 1)

	if !l.Allow("k") {
		t.Fatal("Allow() denied the first event")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("Allow() did not refill after the interval")
	}
}
