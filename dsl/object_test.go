package dsl_test

import (
	"context"
	"testing"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

func TestUnknownKeysStrippedByDefault(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("a", dsl.String()).MustBuild()

	got, err := s.Parse(ctx, map[string]any{"a": "x", "extra": 1.0})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := got["extra"]; ok {
		t.Error("extra should be stripped")
	}
	if got["a"] != "x" {
		t.Errorf("a = %v", got["a"])
	}
}

func TestUnknownStrictReportsPerKey(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("a", dsl.String()).UnknownStrict().MustBuild()

	_, err := s.Parse(ctx, map[string]any{"a": "x", "b": 1.0, "c": 2.0})
	iss := mustIssues(t, err)
	if len(iss) != 2 {
		t.Fatalf("want 2 unrecognized_keys issues, got %v", iss)
	}
	if iss[0].Path != "/b" || iss[0].Code != kata.CodeUnrecognizedKeys {
		t.Errorf("issue[0] = %+v", iss[0])
	}
	if iss[1].Path != "/c" {
		t.Errorf("issue[1] = %+v", iss[1])
	}
}

func TestUnknownPassthroughIntoTarget(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("a", dsl.String()).UnknownPassthrough("extra").MustBuild()

	got, err := s.Parse(ctx, map[string]any{"a": "x", "b": 1.0})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	extra, ok := got["extra"].(map[string]any)
	if !ok || extra["b"] != 1.0 {
		t.Fatalf("extra = %v", got["extra"])
	}
}

func TestUnknownPassthroughInPlace(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("a", dsl.String()).UnknownPassthrough("").MustBuild()

	got, err := s.Parse(ctx, map[string]any{"a": "x", "b": 1.0})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["b"] != 1.0 {
		t.Fatalf("b should pass through, got %v", got)
	}
}

func TestRequiredFieldMissing(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("name", dsl.String()).MustBuild()

	_, err := s.Parse(ctx, map[string]any{})
	iss := mustIssues(t, err)
	if len(iss) != 1 || iss[0].Path != "/name" || iss[0].Code != kata.CodeRequired {
		t.Fatalf("got %v, want required at /name", iss)
	}
}

func TestOptionalFieldAbsent(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("nick", dsl.String()).Optional().MustBuild()

	got, err := s.Parse(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := got["nick"]; ok {
		t.Error("absent optional field should not appear in output")
	}
}

func TestPrefaultIsValidated(t *testing.T) {
	ctx := context.Background()
	ok := dsl.Object().Field("n", dsl.Int().Min(1)).Prefault(5.0).MustBuild()
	got, err := ok.Parse(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("valid prefault: %v", err)
	}
	if got["n"] != int64(5) {
		t.Errorf("n = %v (%T)", got["n"], got["n"])
	}

	bad := dsl.Object().Field("n", dsl.Int().Min(1)).Prefault(0.0).MustBuild()
	_, err = bad.Parse(ctx, map[string]any{})
	iss := mustIssues(t, err)
	if len(iss) != 1 || iss[0].Path != "/n" || iss[0].Code != kata.CodeTooSmall {
		t.Fatalf("invalid prefault must fail validation, got %v", iss)
	}
}

func TestFieldCatchSwallowsIssues(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("n", dsl.Int()).Catch(int64(7)).MustBuild()

	got, err := s.Parse(ctx, map[string]any{"n": "bad"})
	if err != nil {
		t.Fatalf("catch should swallow the failure: %v", err)
	}
	if got["n"] != int64(7) {
		t.Errorf("n = %v, want 7", got["n"])
	}
}

func TestParseWithMetaPresence(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("seen", dsl.String()).
		Field("def", dsl.String()).Default("d").
		Field("bad", dsl.Int()).Catch(int64(0)).
		Field("nul", dsl.String()).Nullable().
		MustBuild()

	dm, err := s.ParseWithMeta(ctx, map[string]any{"seen": "x", "bad": "oops", "nul": nil})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pm := dm.Presence
	if pm["/"]&kata.PresenceSeen == 0 {
		t.Error("root should be seen")
	}
	if pm["/seen"]&kata.PresenceSeen == 0 {
		t.Error("/seen should be seen")
	}
	if pm["/def"]&kata.PresenceDefaultApplied == 0 {
		t.Errorf("/def should have DefaultApplied, got %b", pm["/def"])
	}
	if pm["/bad"]&kata.PresenceCatchApplied == 0 {
		t.Errorf("/bad should have CatchApplied, got %b", pm["/bad"])
	}
	if pm["/nul"]&kata.PresenceWasNull == 0 {
		t.Errorf("/nul should have WasNull, got %b", pm["/nul"])
	}
}

func TestDerivedBuildersDoNotMutateSource(t *testing.T) {
	ctx := context.Background()
	base := dsl.Object().
		Field("a", dsl.String()).
		Field("b", dsl.Float())

	ext := base.Extend()
	ext.Field("c", dsl.Bool())

	baseSchema := base.MustBuild()
	if _, err := baseSchema.Parse(ctx, map[string]any{"a": "x", "b": 1.0}); err != nil {
		t.Fatalf("base must not require c: %v", err)
	}

	extSchema := ext.MustBuild()
	if _, err := extSchema.Parse(ctx, map[string]any{"a": "x", "b": 1.0}); err == nil {
		t.Fatal("extended schema must require c")
	}
}

func TestPickOmitPartial(t *testing.T) {
	ctx := context.Background()
	base := dsl.Object().
		Field("a", dsl.String()).
		Field("b", dsl.Float()).
		Field("c", dsl.Bool())

	picked := base.Pick("a").MustBuild()
	if _, err := picked.Parse(ctx, map[string]any{"a": "x"}); err != nil {
		t.Errorf("pick: %v", err)
	}

	omitted := base.Omit("b", "c").MustBuild()
	if _, err := omitted.Parse(ctx, map[string]any{"a": "x"}); err != nil {
		t.Errorf("omit: %v", err)
	}

	partial := base.Partial().MustBuild()
	if _, err := partial.Parse(ctx, map[string]any{}); err != nil {
		t.Errorf("partial: %v", err)
	}
}

func TestObjectRefineRule(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("min", dsl.Float()).
		Field("max", dsl.Float()).
		Refine("minMax", func(ctx context.Context, ref kata.Ref, m map[string]any) error {
			if m["min"].(float64) > m["max"].(float64) {
				return kata.Issues{ref.Root().Field("min").Issue(kata.CodeCustom, "min must be <= max")}
			}
			return nil
		}).
		MustBuild()

	if _, err := s.Parse(ctx, map[string]any{"min": 1.0, "max": 2.0}); err != nil {
		t.Fatalf("valid: %v", err)
	}

	_, err := s.Parse(ctx, map[string]any{"min": 3.0, "max": 2.0})
	iss := mustIssues(t, err)
	if len(iss) != 1 || iss[0].Path != "/min" || iss[0].Rule != "minMax" {
		t.Fatalf("got %v, want custom issue at /min from rule minMax", iss)
	}
}

func TestDuplicateFieldFailsBuild(t *testing.T) {
	b := dsl.Object().Field("a", dsl.String())
	b.Field("a", dsl.Float())
	if _, err := b.Build(); err == nil {
		t.Fatal("duplicate field declaration must fail Build")
	}
}

func TestSchemaIsReusableConcurrently(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("a", dsl.String().Min(1)).
		Field("b", dsl.Float().Min(0)).
		MustBuild()

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			_, err := s.Parse(ctx, map[string]any{"a": "x", "b": 1.0})
			done <- err
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent parse: %v", err)
		}
	}
}
