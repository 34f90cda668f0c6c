package dsl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// objectSchema validates map-shaped input field by field. Built schemas are
// read-only and safe for concurrent use; all per-call state lives on the
// stack of the call.
type objectSchema struct {
	fields        map[string]fieldSpec
	order         []string
	unknown       kata.UnknownPolicy
	unknownTarget string
	rules         []objectRule
	async         bool
}

func (s *objectSchema) isAsyncSchema() bool { return s.async }

type fieldResult struct {
	val     any
	pres    kata.Presence
	include bool
	err     error
}

func (s *objectSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	out, _, err := s.parseAll(ctx, v)
	return out, err
}

func (s *objectSchema) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[map[string]any], error) {
	out, pm, err := s.parseAll(ctx, v)
	if err != nil {
		return kata.Decoded[map[string]any]{}, err
	}
	return kata.Decoded[map[string]any]{Value: out, Presence: pm}, nil
}

func (s *objectSchema) parseAll(ctx context.Context, v any) (map[string]any, kata.PresenceMap, error) {
	if s.async && !kata.IsAsyncAllowed(ctx) {
		return nil, nil, kata.Issues{{Path: "/", Code: kata.CodeAsyncRequired,
			Message: "schema contains async steps; use ParseAsync or SafeParseAsync"}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: fmt.Sprintf("expected object, got %s", typeNameOf(v)),
			Params:  map[string]any{"expected": "object", "got": typeNameOf(v)}}}
	}

	results := s.parseFields(ctx, m)

	out := make(map[string]any, len(s.order))
	pm := kata.PresenceMap{"/": kata.PresenceSeen}
	var iss kata.Issues
	// Merge strictly in field declaration order so issue ordering stays
	// deterministic even when fields were validated concurrently.
	for i, name := range s.order {
		r := results[i]
		if r.pres != 0 {
			pm["/"+ptrToken(name)] = r.pres
		}
		if r.err != nil {
			iss = append(iss, kata.PrefixIssues("/"+ptrToken(name), r.err)...)
			if kata.IsFailFast(ctx) {
				return nil, nil, iss
			}
			continue
		}
		if r.include {
			out[name] = r.val
		}
	}

	iss = append(iss, s.applyUnknown(m, out)...)
	if len(iss) > 0 {
		return nil, nil, iss
	}

	if len(s.rules) > 0 {
		ref := kata.NewRef(pm)
		for _, r := range s.rules {
			if err := r.fn(ctx, ref, out); err != nil {
				iss = append(iss, refineIssues(r.name, err)...)
				if kata.IsFailFast(ctx) {
					break
				}
			}
		}
		if len(iss) > 0 {
			return nil, nil, iss
		}
	}
	return out, pm, nil
}

func (s *objectSchema) parseFields(ctx context.Context, m map[string]any) []fieldResult {
	results := make([]fieldResult, len(s.order))
	if kata.IsAsyncAllowed(ctx) && len(s.order) > 1 {
		// Independent sibling fields validate concurrently under the async
		// entry points. Each goroutine writes only its own slot.
		g, gctx := errgroup.WithContext(ctx)
		for i, name := range s.order {
			i := i
			f := s.fields[name]
			raw, present := m[name]
			g.Go(func() error {
				results[i] = s.parseField(gctx, f, raw, present)
				return nil
			})
		}
		_ = g.Wait()
		return results
	}
	for i, name := range s.order {
		f := s.fields[name]
		raw, present := m[name]
		results[i] = s.parseField(ctx, f, raw, present)
		if results[i].err != nil && kata.IsFailFast(ctx) {
			break
		}
	}
	return results
}

func (s *objectSchema) parseField(ctx context.Context, f fieldSpec, raw any, present bool) fieldResult {
	if !present {
		switch {
		case f.adapter.hasDefault:
			return fieldResult{val: f.adapter.defaultVal, pres: kata.PresenceDefaultApplied, include: true}
		case f.adapter.hasPref:
			out, caught, err := f.adapter.run(ctx, f.adapter.prefVal)
			r := fieldResult{val: out, pres: kata.PresenceDefaultApplied, include: err == nil, err: err}
			if caught {
				r.pres |= kata.PresenceCatchApplied
			}
			return r
		case f.required:
			return fieldResult{err: kata.Issues{{Path: "/", Code: kata.CodeRequired, Message: "required"}}}
		default:
			return fieldResult{}
		}
	}

	pres := kata.PresenceSeen
	if raw == nil {
		pres |= kata.PresenceWasNull
	}
	out, caught, err := f.adapter.run(ctx, raw)
	if caught {
		pres |= kata.PresenceCatchApplied
	}
	return fieldResult{val: out, pres: pres, include: err == nil, err: err}
}

func (s *objectSchema) applyUnknown(m, out map[string]any) kata.Issues {
	var unknown []string
	for k := range m {
		if _, known := s.fields[k]; !known {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)

	switch s.unknown {
	case kata.UnknownStrict:
		iss := make(kata.Issues, 0, len(unknown))
		for _, k := range unknown {
			iss = append(iss, kata.Issue{Path: "/" + ptrToken(k), Code: kata.CodeUnrecognizedKeys,
				Message: "unrecognized key", Params: map[string]any{"key": k}})
		}
		return iss
	case kata.UnknownPassthrough:
		if s.unknownTarget != "" {
			extra := make(map[string]any, len(unknown))
			for _, k := range unknown {
				extra[k] = m[k]
			}
			out[s.unknownTarget] = extra
			return nil
		}
		for _, k := range unknown {
			out[k] = m[k]
		}
		return nil
	default: // UnknownStrip
		return nil
	}
}

func (s *objectSchema) TypeCheck(ctx context.Context, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: fmt.Sprintf("expected object, got %s", typeNameOf(v))}}
	}
	var iss kata.Issues
	for _, name := range s.order {
		f := s.fields[name]
		raw, present := m[name]
		if !present {
			if f.required && !f.adapter.hasDefault && !f.adapter.hasPref {
				iss = append(iss, kata.Issue{Path: "/" + ptrToken(name), Code: kata.CodeRequired, Message: "required"})
			}
			continue
		}
		if raw == nil && f.adapter.nullable {
			continue
		}
		if err := f.adapter.typeCheck(ctx, raw); err != nil {
			iss = append(iss, kata.PrefixIssues("/"+ptrToken(name), err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (s *objectSchema) RuleCheck(ctx context.Context, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	var iss kata.Issues
	for _, name := range s.order {
		f := s.fields[name]
		raw, present := m[name]
		if !present || (raw == nil && f.adapter.nullable) {
			continue
		}
		if err := f.adapter.ruleCheck(ctx, raw); err != nil {
			iss = append(iss, kata.PrefixIssues("/"+ptrToken(name), err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (s *objectSchema) Validate(ctx context.Context, v any) error {
	if err := s.TypeCheck(ctx, v); err != nil {
		return err
	}
	return s.RuleCheck(ctx, v)
}

func (s *objectSchema) ValidateValue(ctx context.Context, v map[string]any) error {
	return s.Validate(ctx, v)
}

func (s *objectSchema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.order))
	var required []string
	for _, name := range s.order {
		f := s.fields[name]
		ps, err := f.adapter.JSONSchema()
		if err != nil {
			return nil, err
		}
		props[name] = ps
		if f.required && !f.adapter.hasDefault && !f.adapter.hasPref {
			required = append(required, name)
		}
	}
	out := &js.Schema{Type: "object", Properties: props, Required: required}
	if s.unknown == kata.UnknownStrict {
		out.AdditionalProperties = false
	}
	return out, nil
}

var ptrEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func ptrToken(name string) string { return ptrEscaper.Replace(name) }
