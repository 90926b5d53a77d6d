package helpers

import (
	"strings"
	"testing"
	"time"
)

func TestGenOTPCode(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{6, 6},
		{4, 4},
		{8, 8},
		{0, 6},
		{42, 6},
	}
	for _, tc := range cases {
		code, err := GenOTPCode(tc.in)
		if err != nil {
			t.Fatalf("GenOTPCode(%d): %v", tc.in, err)
		}
		if len(code) != tc.want {
			t.Errorf("GenOTPCode(%d) = %q, want length %d", tc.in, code, tc.want)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Errorf("GenOTPCode(%d) = %q contains non-digit", tc.in, code)
			}
		}
	}
}

func TestGenToken(t *testing.T) {
	tok, err := GenToken(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 32 {
		t.Fatalf("len = %d, want 32", len(tok))
	}
	if _, err := GenToken(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if !CompareHashAndPassword(hash, "s3cret-pass") {
		t.Fatal("expected password to match")
	}
	if CompareHashAndPassword(hash, "wrong") {
		t.Fatal("expected mismatch")
	}
	if _, err := HashPassword(strings.Repeat("a", 73)); err != ErrPasswordTooLong {
		t.Fatalf("err = %v, want ErrPasswordTooLong", err)
	}
}

func TestJWTAccessAndRefresh(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, exp, err := m.GenerateAccessToken("u1", "owner", "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry should be in the future")
	}
	claims, err := m.ParseAccessToken(access)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" || claims.Role != "owner" || claims.SessionID != "sid-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := m.ParseRefreshToken(access); err == nil {
		t.Fatal("access token must not validate with the refresh secret")
	}

	refresh, _, err := m.GenerateRefreshToken("u1", "owner", "sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ParseRefreshToken(refresh); err != nil {
		t.Fatal(err)
	}
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("a", "r", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("u1", "user", "s")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ParseAccessToken(tok); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestQueryCacheKey(t *testing.T) {
	a := QueryCacheKey("props", map[string]string{"city": "pune", "type": "pg", "q": ""})
	b := QueryCacheKey("props", map[string]string{"type": "pg", "city": "pune"})
	if a != b {
		t.Fatalf("keys differ: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "props:") {
		t.Fatalf("missing prefix: %s", a)
	}
	c := QueryCacheKey("props", map[string]string{"city": "delhi"})
	if a == c {
		t.Fatal("different params should give different keys")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":                "hello-world",
		"  Best PGs in Pune!! 2024 ": "best-pgs-in-pune-2024",
		"Café & Mess":                "caf-mess",
		"---":                        "",
		"already-a-slug":             "already-a-slug",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
