package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/AdityaShome/Secondhome-sub002/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:        "secondhome",
		CompanyName:    "SecondHome",
		SupportURL:     "https://secondhome.test/support",
		UnsubscribeURL: "https://secondhome.test/unsubscribe",
	}
}

func TestRenderOTP(t *testing.T) {
	exp := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	data := NewOTPData(testConfig(), "Asha", "asha@example.com", "482913", "verify_email", exp)

	subject, text, html, err := Render(OTP, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "482913 is your SecondHome verification code" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Hi Asha", "482913", "Verify Email", "02 January 2026, 15:04"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(html, "482913") || !strings.Contains(html, "https://secondhome.test/support") {
		t.Errorf("html missing code or footer:\n%s", html)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	data := NewNotificationData(testConfig(), "<b>Ravi</b>", "ravi@example.com", "Hello", "<script>x</script>")

	_, text, html, err := Render(Notification, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("html not escaped:\n%s", html)
	}
	if !strings.Contains(text, "<script>x</script>") {
		t.Fatalf("text body should be verbatim:\n%s", text)
	}
}

func TestRenderNewsletterUsesPersonalUnsubscribe(t *testing.T) {
	data := NewNewsletterData(testConfig(), "a@example.com", "March update", "New rooms near campus", "https://secondhome.test/u?token=abc")

	subject, text, _, err := Render(Newsletter, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "March update" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(text, "token=abc") {
		t.Fatalf("missing personal unsubscribe link:\n%s", text)
	}
}

func TestRenderAllKnownTemplates(t *testing.T) {
	cfg := testConfig()
	for _, name := range []string{OTP, BookingUpdate, ListingStatus, Notification, Newsletter, LoginNotification} {
		data := ToMap(NewBaseEmailData(cfg, name, "User", "user@example.com"))
		if _, _, _, err := Render(name, data); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("missing", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestFormatGeo(t *testing.T) {
	got := FormatGeo(Geo{City: "Pune", Country: "India"})
	if got != "Pune, India" {
		t.Fatalf("got %q", got)
	}
}
