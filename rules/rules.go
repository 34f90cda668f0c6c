// Package rules provides reusable cross-field refinements for object
// schemas. Each helper returns a dsl.ObjectRule suitable for
// Object().Refine(name, rule).
package rules

import (
	"context"
	"fmt"
	"strings"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

// present reports whether a field appeared in the input, preferring presence
// metadata over the decoded map (a stripped or failed field is absent from
// the map even when it was seen).
func present(ref kata.Ref, m map[string]any, name string) bool {
	if pm := ref.Presence(); pm != nil {
		if p, ok := pm["/"+name]; ok {
			return p&kata.PresenceSeen != 0
		}
	}
	_, ok := m[name]
	return ok
}

// AtLeastOne requires at least one of the named fields to be present.
func AtLeastOne(fields ...string) dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		for _, f := range fields {
			if present(ref, m, f) {
				return nil
			}
		}
		return kata.Issues{ref.Root().Issue(kata.CodeCustom,
			fmt.Sprintf("at least one of [%s] is required", strings.Join(fields, ", ")),
			"fields", fields)}
	}
}

// Requires demands that deps are present whenever field is.
func Requires(field string, deps ...string) dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		if !present(ref, m, field) {
			return nil
		}
		var iss kata.Issues
		for _, d := range deps {
			if !present(ref, m, d) {
				iss = append(iss, ref.Root().Field(d).Issue(kata.CodeRequired,
					fmt.Sprintf("required when %q is set", field), "requiredBy", field))
			}
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	}
}

// MutuallyExclusive rejects inputs where more than one of the named fields is
// present.
func MutuallyExclusive(fields ...string) dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		var found []string
		for _, f := range fields {
			if present(ref, m, f) {
				found = append(found, f)
			}
		}
		if len(found) > 1 {
			return kata.Issues{ref.Root().Issue(kata.CodeCustom,
				fmt.Sprintf("fields [%s] are mutually exclusive", strings.Join(found, ", ")),
				"fields", found)}
		}
		return nil
	}
}

// UniqueBy requires the elements of the array under arrayField to carry
// distinct values at key. Each duplicate reports a uniqueness issue at the
// offending element's key path.
func UniqueBy(arrayField, key string) dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		arr, ok := m[arrayField].([]any)
		if !ok {
			return nil
		}
		seen := make(map[string]int, len(arr))
		var iss kata.Issues
		for i, el := range arr {
			em, ok := el.(map[string]any)
			if !ok {
				continue
			}
			kv, ok := em[key]
			if !ok {
				continue
			}
			// stringified key keeps unhashable values (nested maps) safe
			ks := fmt.Sprintf("%T|%v", kv, kv)
			if first, dup := seen[ks]; dup {
				iss = append(iss, ref.Root().Field(arrayField).Index(i).Field(key).Issue(
					kata.CodeUniqueness,
					fmt.Sprintf("duplicate %q (first at index %d)", key, first),
					"key", key, "value", kv, "firstIndex", first))
				continue
			}
			seen[ks] = i
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	}
}

// When builds a conditional rule: Then runs when cond holds, Else otherwise.
func When(cond func(m map[string]any) bool) *WhenChain {
	return &WhenChain{cond: cond}
}

// WhenChain carries the conditional branches; it is itself a usable rule.
type WhenChain struct {
	cond     func(m map[string]any) bool
	then, el dsl.ObjectRule
}

func (w *WhenChain) Then(r dsl.ObjectRule) *WhenChain { w.then = r; return w }
func (w *WhenChain) Else(r dsl.ObjectRule) *WhenChain { w.el = r; return w }

// Rule finalizes the chain into an ObjectRule.
func (w *WhenChain) Rule() dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		if w.cond(m) {
			if w.then != nil {
				return w.then(ctx, ref, m)
			}
			return nil
		}
		if w.el != nil {
			return w.el(ctx, ref, m)
		}
		return nil
	}
}

// And runs every rule, collecting all issues.
func And(rules ...dsl.ObjectRule) dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		var iss kata.Issues
		for _, r := range rules {
			if err := r(ctx, ref, m); err != nil {
				if sub, ok := kata.AsIssues(err); ok {
					iss = append(iss, sub...)
				} else {
					iss = append(iss, kata.Issue{Path: "/", Code: kata.CodeCustom, Message: err.Error(), Cause: err})
				}
			}
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	}
}

// Or passes when any rule passes; otherwise it reports the issues of every
// branch.
func Or(rules ...dsl.ObjectRule) dsl.ObjectRule {
	return func(ctx context.Context, ref kata.Ref, m map[string]any) error {
		var iss kata.Issues
		for _, r := range rules {
			err := r(ctx, ref, m)
			if err == nil {
				return nil
			}
			if sub, ok := kata.AsIssues(err); ok {
				iss = append(iss, sub...)
			} else {
				iss = append(iss, kata.Issue{Path: "/", Code: kata.CodeCustom, Message: err.Error(), Cause: err})
			}
		}
		return iss
	}
}
