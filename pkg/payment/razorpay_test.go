package payment

import (
	"context"
	"errors"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	r := NewRazorpay("rzp_test_key", "s3cret")
	sig := Sign("s3cret", "order_1", "pay_1")

	if err := r.VerifySignature("order_1", "pay_1", sig); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := r.VerifySignature("order_1", "pay_2", sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("tampered payment id accepted: %v", err)
	}
	if err := r.VerifySignature("order_1", "pay_1", "deadbeef"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("bad signature accepted: %v", err)
	}
}

func TestSignKnownVector(t *testing.T) {
	got := Sign("key", "order_A", "pay_B")
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(got))
	}
	if got != Sign("key", "order_A", "pay_B") {
		t.Fatal("signature not deterministic")
	}
	if got == Sign("other", "order_A", "pay_B") {
		t.Fatal("signature ignores secret")
	}
}

func TestToMinor(t *testing.T) {
	cases := map[float64]int64{
		1:       100,
		4500.5:  450050,
		12000.0: 1200000,
		99.99:   9999,
	}
	for in, want := range cases {
		if got := ToMinor(in); got != want {
			t.Errorf("ToMinor(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestUnconfigured(t *testing.T) {
	r := NewRazorpay("", "")
	if _, err := r.CreateOrder(context.Background(), 100, "INR", "r1", nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("CreateOrder err = %v", err)
	}
	if err := r.VerifySignature("o", "p", "s"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("VerifySignature err = %v", err)
	}
}
