package env

import "testing"

func TestGetFallback(t *testing.T) {
	t.Setenv("PDV_TEST_VALUE", "")
	if got := Get("PDV_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("PDV_TEST_VALUE", "set")
	if got := Get("PDV_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("PDV_TEST_FLAG", "true")
	if !Bool("PDV_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("PDV_TEST_FLAG", "nope")
	if !Bool("PDV_TEST_FLAG", true) {
		t.Fatal("expected fallback on malformed value")
	}
}
