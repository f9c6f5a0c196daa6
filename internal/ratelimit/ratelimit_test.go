package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request over the limit should be denied")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("a different key must not be affected")
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	l := New(1, 50*time.Millisecond)
	defer l.Close()

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k") {
		t.Error("second request in the window should be denied")
	}

	time.Sleep(60 * time.Millisecond)

	if !l.Allow("k") {
		t.Error("request after the window should be allowed")
	}
}
