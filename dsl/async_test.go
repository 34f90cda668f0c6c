package dsl_test

import (
	"context"
	"testing"
	"time"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

func TestSyncParseOnAsyncSchemaFails(t *testing.T) {
	ctx := context.Background()
	s := dsl.SchemaOf(dsl.String().AnyAdapter().
		RefineAsync("remote", func(ctx context.Context, v any) error { return nil }))

	_, err := s.Parse(ctx, "x")
	iss := mustIssues(t, err)
	if len(iss) != 1 || iss[0].Code != kata.CodeAsyncRequired {
		t.Fatalf("got %v, want exactly one async_required issue", iss)
	}

	if v, err := kata.ParseAsync(ctx, s, "x"); err != nil || v != "x" {
		t.Fatalf("ParseAsync: v=%v err=%v", v, err)
	}
}

func TestAsyncObjectRequiresAsyncEntryPoint(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("a", dsl.String().AnyAdapter().
			RefineAsync("check", func(ctx context.Context, v any) error { return nil })).
		MustBuild()

	res := kata.SafeParse(ctx, s, map[string]any{"a": "x"})
	if res.OK || len(res.Issues) != 1 || res.Issues[0].Code != kata.CodeAsyncRequired {
		t.Fatalf("plain SafeParse must fail with async_required, got %+v", res)
	}

	res = kata.SafeParseAsync(ctx, s, map[string]any{"a": "x"})
	if !res.OK {
		t.Fatalf("SafeParseAsync: %v", res.Issues)
	}
}

func TestAsyncIssueOrderIsDeclarationOrder(t *testing.T) {
	ctx := context.Background()
	slowFail := func(d time.Duration) func(context.Context, any) error {
		return func(ctx context.Context, v any) error {
			time.Sleep(d)
			return kata.Issues{{Path: "/", Code: kata.CodeCustom, Message: "rejected"}}
		}
	}
	// the first field finishes last; issue order must still follow declaration
	s := dsl.Object().
		Field("first", dsl.String().AnyAdapter().RefineAsync("r", slowFail(30*time.Millisecond))).
		Field("second", dsl.String().AnyAdapter().RefineAsync("r", slowFail(0))).
		MustBuild()

	res := kata.SafeParseAsync(ctx, s, map[string]any{"first": "a", "second": "b"})
	if res.OK {
		t.Fatal("want failure")
	}
	if len(res.Issues) != 2 {
		t.Fatalf("want 2 issues, got %v", res.Issues)
	}
	if res.Issues[0].Path != "/first" || res.Issues[1].Path != "/second" {
		t.Fatalf("order = [%s, %s], want declaration order", res.Issues[0].Path, res.Issues[1].Path)
	}
}

func TestAsyncTransform(t *testing.T) {
	ctx := context.Background()
	s := dsl.TransformAsync[string, string](dsl.String().Schema(), "lookup",
		func(ctx context.Context, v string) (string, error) { return v + "!", nil })

	if _, err := s.Parse(ctx, "x"); err == nil {
		t.Fatal("plain Parse must reject async transforms")
	}
	if v, err := kata.ParseAsync[string](ctx, s, "x"); err != nil || v != "x!" {
		t.Fatalf("v=%v err=%v", v, err)
	}
}

func TestContextCancellationStopsAsyncParse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := dsl.Object().
		Field("a", dsl.String().AnyAdapter().
			RefineAsync("ctx", func(ctx context.Context, v any) error { return ctx.Err() })).
		MustBuild()

	res := kata.SafeParseAsync(ctx, s, map[string]any{"a": "x"})
	if res.OK {
		t.Fatal("cancelled context should surface as a field issue")
	}
}
