package dsl_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

func TestNullableNullBypassesPipeline(t *testing.T) {
	ctx := context.Background()
	ran := false
	a := dsl.String().AnyAdapter().Nullable().
		Refine("nonblank", func(_ context.Context, v any) error {
			ran = true
			if v.(string) == "" {
				return errors.New("blank")
			}
			return nil
		}).
		Transform("upper", func(_ context.Context, v any) (any, error) {
			ran = true
			return strings.ToUpper(v.(string)), nil
		})

	out, err := a.Parse(ctx, nil)
	if err != nil {
		t.Fatalf("null input: %v", err)
	}
	if out != nil {
		t.Fatalf("null input produced %v", out)
	}
	if ran {
		t.Fatal("refinements or transforms ran on null input")
	}

	out, err = a.Parse(ctx, "ok")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != "OK" {
		t.Errorf("out = %v, want OK", out)
	}
}

// handleSchema exercises the optional Normalize/Refine hooks on a wrapped
// schema.
type handleSchema struct{ kata.Schema[string] }

func (handleSchema) Normalize(_ context.Context, v string) (string, error) {
	return strings.TrimSpace(v), nil
}

func (handleSchema) Refine(_ context.Context, v string) error {
	if v == "root" {
		return errors.New("handle is reserved")
	}
	return nil
}

func TestOfAppliesNormalizeAndRefineHooks(t *testing.T) {
	ctx := context.Background()
	a := dsl.Of[string](handleSchema{dsl.String().Min(1).Schema()})

	out, err := a.Parse(ctx, "  ada  ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != "ada" {
		t.Errorf("out = %q, want %q", out, "ada")
	}

	// normalize runs first, so the padded reserved handle is still caught
	_, err = a.Parse(ctx, "  root ")
	iss := mustIssues(t, err)
	if len(iss) != 1 || iss[0].Code != kata.CodeCustom || iss[0].Rule != "refine" {
		t.Fatalf("issues = %+v", iss)
	}
}

func TestOneOfProjectionOrderIsDeterministic(t *testing.T) {
	variant := func(field string) dsl.AnyAdaptable {
		return dsl.Object().
			Field("kind", dsl.String()).
			Field(field, dsl.String())
	}
	s := dsl.Object().
		Discriminator("kind").
		OneOf(map[string]dsl.AnyAdaptable{
			"circle": variant("radius"),
			"rect":   variant("width"),
			"line":   variant("length"),
		}).
		MustBuild()

	js, err := s.JSONSchema()
	if err != nil {
		t.Fatalf("jsonschema: %v", err)
	}
	if len(js.OneOf) != 3 {
		t.Fatalf("oneOf branches = %d, want 3", len(js.OneOf))
	}
	// branches follow sorted discriminant order: circle, line, rect
	want := []string{"radius", "length", "width"}
	for i, prop := range want {
		if _, ok := js.OneOf[i].Properties[prop]; !ok {
			t.Errorf("branch %d missing property %q", i, prop)
		}
	}
}
