package services_test

import (
	"errors"
	"strings"
	"testing"

	"foldersort/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrIO, "organize", "move", "photo.jpg", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"organize", "move", "photo.jpg"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestDestinationExistsIsIO(t *testing.T) {
	err := services.Wrap(services.ErrDestinationExists, "organize", "move", "a.txt", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatal("expected destination collision to classify as ErrIO")
	}
}

func TestExitHint(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrConfigCorrupt, "categories", "load", "", nil), "categories init"},
		{services.Wrap(services.ErrConfiguration, "config", "parse", "", nil), "config validate"},
		{services.Wrap(services.ErrLocked, "", "", "", nil), "in progress"},
		{services.Wrap(services.ErrDestinationExists, "", "", "", nil), "--handle-duplicates"},
		{services.Wrap(services.ErrIO, "", "", "", nil), "foldersort undo"},
		{errors.New("other"), ""},
	}
	for _, tc := range cases {
		got := services.ExitHint(tc.err)
		if tc.want == "" && got != "" {
			t.Fatalf("ExitHint(%v) = %q, want empty", tc.err, got)
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("ExitHint(%v) = %q, want fragment %q", tc.err, got, tc.want)
		}
	}
}
