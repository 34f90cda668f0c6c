package i18n_test

import (
	"strings"
	"testing"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/i18n"
)

func TestMessageFillsParams(t *testing.T) {
	got := i18n.Message(i18n.EN, kata.CodeTooSmall, map[string]any{"min": 3})
	if got != "value is too small (min 3)" {
		t.Errorf("got %q", got)
	}
	got = i18n.Message(i18n.EN, kata.CodeInvalidType, map[string]any{"expected": "string", "got": "number"})
	if got != "expected string, got number" {
		t.Errorf("got %q", got)
	}
}

func TestMessageJapaneseCatalog(t *testing.T) {
	got := i18n.Message(i18n.JA, kata.CodeRequired, nil)
	if got != "必須です" {
		t.Errorf("got %q", got)
	}
	got = i18n.Message(i18n.JA, kata.CodeTooSmall, map[string]any{"min": 1})
	if !strings.Contains(got, "1") {
		t.Errorf("params not rendered: %q", got)
	}
}

func TestMessageFallbacks(t *testing.T) {
	if got := i18n.Message("fr", kata.CodeRequired, nil); got != "required" {
		t.Errorf("unknown language should fall back to EN, got %q", got)
	}
	if got := i18n.Message(i18n.EN, "no_such_code", nil); got != "no_such_code" {
		t.Errorf("unknown code should fall back to the code, got %q", got)
	}
}

func TestLocalize(t *testing.T) {
	iss := kata.Issues{
		{Path: "/a", Code: kata.CodeRequired},
		{Path: "/b", Code: kata.CodeTooBig, Params: map[string]any{"max": 10}},
	}
	out := i18n.Localize(iss, i18n.JA)
	if out[0].Message != "必須です" {
		t.Errorf("out[0] = %+v", out[0])
	}
	if !strings.Contains(out[1].Message, "10") {
		t.Errorf("out[1] = %+v", out[1])
	}
	if iss[0].Message != "" {
		t.Error("Localize must not mutate its input")
	}
}
