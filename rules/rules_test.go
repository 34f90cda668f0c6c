package rules_test

import (
	"context"
	"testing"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
	"github.com/kataform/kata/rules"
)

func contactSchema(rule dsl.ObjectRule) kata.Schema[map[string]any] {
	return dsl.Object().
		Field("email", dsl.String()).Optional().
		Field("phone", dsl.String()).Optional().
		Field("fax", dsl.String()).Optional().
		Refine("contact", rule).
		MustBuild()
}

func issuesOf(t *testing.T, err error) kata.Issues {
	t.Helper()
	iss, ok := kata.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	return iss
}

func TestAtLeastOne(t *testing.T) {
	ctx := context.Background()
	s := contactSchema(rules.AtLeastOne("email", "phone"))

	if _, err := s.Parse(ctx, map[string]any{"email": "a@b"}); err != nil {
		t.Fatalf("email present: %v", err)
	}
	_, err := s.Parse(ctx, map[string]any{"fax": "123"})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != kata.CodeCustom || iss[0].Path != "/" {
		t.Fatalf("got %v", iss)
	}
}

func TestRequires(t *testing.T) {
	ctx := context.Background()
	s := contactSchema(rules.Requires("email", "phone", "fax"))

	if _, err := s.Parse(ctx, map[string]any{"phone": "1"}); err != nil {
		t.Fatalf("trigger absent: %v", err)
	}
	_, err := s.Parse(ctx, map[string]any{"email": "a@b"})
	iss := issuesOf(t, err)
	if len(iss) != 2 || iss[0].Path != "/phone" || iss[1].Path != "/fax" {
		t.Fatalf("got %v", iss)
	}
	if iss[0].Code != kata.CodeRequired || iss[0].Params["requiredBy"] != "email" {
		t.Fatalf("issue[0] = %+v", iss[0])
	}
}

func TestMutuallyExclusive(t *testing.T) {
	ctx := context.Background()
	s := contactSchema(rules.MutuallyExclusive("email", "phone"))

	if _, err := s.Parse(ctx, map[string]any{"email": "a@b"}); err != nil {
		t.Fatalf("single field: %v", err)
	}
	_, err := s.Parse(ctx, map[string]any{"email": "a@b", "phone": "1"})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Code != kata.CodeCustom {
		t.Fatalf("got %v", iss)
	}
}

func TestUniqueBy(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("items", dsl.Array(dsl.Object().Field("id", dsl.String()))).
		Refine("uniqueIDs", rules.UniqueBy("items", "id")).
		MustBuild()

	ok := map[string]any{"items": []any{
		map[string]any{"id": "a"},
		map[string]any{"id": "b"},
	}}
	if _, err := s.Parse(ctx, ok); err != nil {
		t.Fatalf("distinct ids: %v", err)
	}

	dup := map[string]any{"items": []any{
		map[string]any{"id": "a"},
		map[string]any{"id": "b"},
		map[string]any{"id": "a"},
	}}
	_, err := s.Parse(ctx, dup)
	iss := issuesOf(t, err)
	if len(iss) != 1 {
		t.Fatalf("want 1 issue, got %v", iss)
	}
	if iss[0].Code != kata.CodeUniqueness || iss[0].Path != "/items/2/id" {
		t.Fatalf("got %+v", iss[0])
	}
	if iss[0].Params["firstIndex"] != 0 {
		t.Errorf("firstIndex = %v", iss[0].Params["firstIndex"])
	}
}

func TestWhenThenElse(t *testing.T) {
	ctx := context.Background()
	rule := rules.When(func(m map[string]any) bool { return m["email"] != nil }).
		Then(rules.Requires("email", "phone")).
		Else(rules.AtLeastOne("fax")).
		Rule()
	s := contactSchema(rule)

	if _, err := s.Parse(ctx, map[string]any{"email": "a@b", "phone": "1"}); err != nil {
		t.Fatalf("then branch satisfied: %v", err)
	}
	if _, err := s.Parse(ctx, map[string]any{"email": "a@b"}); err == nil {
		t.Fatal("then branch must require phone")
	}
	if _, err := s.Parse(ctx, map[string]any{"fax": "9"}); err != nil {
		t.Fatalf("else branch satisfied: %v", err)
	}
	if _, err := s.Parse(ctx, map[string]any{}); err == nil {
		t.Fatal("else branch must require fax")
	}
}

func TestAndCollectsAllBranches(t *testing.T) {
	ctx := context.Background()
	s := contactSchema(rules.And(
		rules.AtLeastOne("email"),
		rules.AtLeastOne("phone"),
	))

	_, err := s.Parse(ctx, map[string]any{})
	iss := issuesOf(t, err)
	if len(iss) != 2 {
		t.Fatalf("want both branch issues, got %v", iss)
	}
}

func TestOrPassesOnAnyBranch(t *testing.T) {
	ctx := context.Background()
	s := contactSchema(rules.Or(
		rules.AtLeastOne("email"),
		rules.AtLeastOne("phone"),
	))

	if _, err := s.Parse(ctx, map[string]any{"phone": "1"}); err != nil {
		t.Fatalf("second branch passes: %v", err)
	}
	_, err := s.Parse(ctx, map[string]any{})
	iss := issuesOf(t, err)
	if len(iss) != 2 {
		t.Fatalf("failure must report every branch, got %v", iss)
	}
}
