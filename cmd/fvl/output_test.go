package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/fvl-lang/fvl/core"
)

func TestRenderErrorKindedText(t *testing.T) {
	jsonOutput = false
	got := renderError(core.ErrBadAddress("0xzzzz"))
	if !strings.HasPrefix(got, "[ERROR] BadAddress:") {
		t.Fatalf("got %q", got)
	}
}

func TestRenderErrorKindedJSON(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()
	got := renderError(core.ErrBadAmount("nan"))
	if !strings.Contains(got, `"kind":"BadAmount"`) {
		t.Fatalf("got %q", got)
	}
}

func TestRenderErrorUnkindedDefaultsToInternal(t *testing.T) {
	jsonOutput = false
	got := renderError(errors.New("boom"))
	if !strings.HasPrefix(got, "[ERROR] Internal:") {
		t.Fatalf("got %q", got)
	}
}

func TestExitCodeForUserErrorIsOne(t *testing.T) {
	if code := exitCodeFor(core.ErrBadAddress("x")); code != 1 {
		t.Fatalf("got %d, want 1", code)
	}
}

func TestExitCodeForInternalErrorIsTwo(t *testing.T) {
	if code := exitCodeFor(core.ErrIoFailure("disk full")); code != 2 {
		t.Fatalf("got %d, want 2", code)
	}
}

func TestExitCodeForUnkindedIsTwo(t *testing.T) {
	if code := exitCodeFor(errors.New("boom")); code != 2 {
		t.Fatalf("got %d, want 2", code)
	}
}
