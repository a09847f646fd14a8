package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestBurstThenDeny(t *testing.T) {
	l := New(60, 2)
	r := httptest.NewRequest("GET", "/records", nil)
	r.RemoteAddr = "10.0.0.1:5555"

	if !l.Allow(r) || !l.Allow(r) {
		t.Fatal("burst requests should pass")
	}
	if l.Allow(r) {
		t.Fatal("third immediate request should be denied")
	}
}

func TestRefill(t *testing.T) {
	l := New(60, 1) // 1 token/sec
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }

	r := httptest.NewRequest("GET", "/records", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if !l.Allow(r) {
		t.Fatal("first request should pass")
	}
	if l.Allow(r) {
		t.Fatal("bucket should be empty")
	}
	now = now.Add(1500 * time.Millisecond)
	if !l.Allow(r) {
		t.Fatal("bucket should have refilled")
	}
}

func TestClientsAreIndependent(t *testing.T) {
	l := New(60, 1)
	a := httptest.NewRequest("GET", "/records", nil)
	a.RemoteAddr = "10.0.0.1:5555"
	b := httptest.NewRequest("GET", "/records", nil)
	b.RemoteAddr = "10.0.0.2:5555"

	if !l.Allow(a) {
		t.Fatal("a should pass")
	}
	if !l.Allow(b) {
		t.Fatal("b has its own bucket")
	}
}

func TestForwardedForTakesFirstHop(t *testing.T) {
	r := httptest.NewRequest("GET", "/records", nil)
	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if ip := clientIP(r); ip != "203.0.113.7" {
		t.Fatalf("clientIP = %q", ip)
	}
}
