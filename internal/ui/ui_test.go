package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestNormalizeColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"always":  ColorAlways,
		" NEVER ": ColorNever,
		"":        ColorAuto,
		"bogus":   ColorAuto,
	}
	for input, want := range cases {
		if got := NormalizeColorMode(input); got != want {
			t.Fatalf("NormalizeColorMode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAlertWithoutColor(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)
	u.Alert("Email Error", "An error occurred while sending email: %s", "535 rejected")
	if got := errOut.String(); got != "Email Error: An error occurred while sending email: 535 rejected\n" {
		t.Fatalf("Alert() wrote %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("Alert() must write to the error stream only")
	}
}

func TestWarnfWritesToErrorStream(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorNever, false)
	u.Warnf("%d of %d images could not be downloaded\n", 1, 3)
	if got := errOut.String(); got != "1 of 3 images could not be downloaded\n" {
		t.Fatalf("Warnf() wrote %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("Warnf() must write to the error stream only")
	}
}

func TestColorizeLink(t *testing.T) {
	var buf bytes.Buffer
	output := termenv.NewOutput(&buf, termenv.WithProfile(termenv.TrueColor))

	if got := ColorizeLink(output, false, "https://img.example/a.jpg"); got != "https://img.example/a.jpg" {
		t.Fatalf("disabled ColorizeLink() = %q", got)
	}
	if got := ColorizeLink(nil, true, "plain"); got != "plain" {
		t.Fatalf("nil output ColorizeLink() = %q", got)
	}
	got := ColorizeLink(output, true, "https://img.example/a.jpg")
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "https://img.example/a.jpg") {
		t.Fatalf("enabled ColorizeLink() = %q", got)
	}
}

func TestProgressBarPlain(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, false, false)
	bar.Update("Downloaded 1 of 4 images", 25)
	bar.Update("Downloaded 1 of 4 images", 25)
	bar.Update("Downloaded 4 of 4 images", 140)
	bar.Finish()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (duplicates suppressed), got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "[#######-----------------------]  25%") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "100%") || strings.Contains(lines[1], "-]") {
		t.Fatalf("progress should clamp to a full bar: %q", lines[1])
	}
}

func TestProgressBarInteractiveRedraws(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, true, false)
	bar.Update("Searching", 0)
	bar.Update("Downloading", 50)
	bar.Finish()

	out := buf.String()
	if strings.Count(out, "\r\033[2K") != 2 || !strings.HasSuffix(out, "\n") {
		t.Fatalf("unexpected interactive output: %q", out)
	}
}

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("cats\n"), &out)

	got, err := p.Ask("Image Search Topic", "")
	if err != nil || got != "cats" {
		t.Fatalf("Ask() = %q, %v", got, err)
	}
	got, err = p.Ask("Number of Images", "5")
	if err != nil || got != "5" {
		t.Fatalf("Ask() with value = %q, %v", got, err)
	}
	got, err = p.Ask("Your Email Address", "")
	if err != nil || got != "" {
		t.Fatalf("Ask() at EOF = %q, %v", got, err)
	}
	if !strings.Contains(out.String(), "Image Search Topic: ") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}
