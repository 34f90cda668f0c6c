package kata

import (
	"context"
	"errors"
	"io"

	"github.com/kataform/kata/internal/engine"
)

// ParseFrom decodes src (with enforcement applied) and parses the resulting
// value tree against s. Structural issues discovered while tokenizing
// (duplicate keys, depth, size) precede schema issues in the result.
func ParseFrom[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (T, error) {
	var zero T
	opt := firstOpt(opts)

	var structural Issues
	enforced := EnforceSource(src, opt, func(it Issue) {
		structural = AppendIssues(structural, it)
	})

	v, err := decodeTree(enforced, opt.NumberMode)
	if err != nil {
		return zero, AppendIssues(structural, decodeIssue(err, enforced.Location()))
	}

	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	out, perr := s.Parse(ctx, v)
	if perr != nil {
		iss, ok := AsIssues(perr)
		if !ok {
			iss = Issues{{Path: "/", Code: CodeParseError, Message: perr.Error(), Cause: perr}}
		}
		return zero, AppendIssues(structural, iss...)
	}
	if len(structural) > 0 {
		return zero, structural
	}
	return out, nil
}

// ParseFromWithMeta is ParseFrom returning presence metadata filtered per
// opt.Presence and rendered per opt.PathRender.
func ParseFromWithMeta[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (Decoded[T], error) {
	opt := firstOpt(opts)

	var structural Issues
	enforced := EnforceSource(src, opt, func(it Issue) {
		structural = AppendIssues(structural, it)
	})

	v, err := decodeTree(enforced, opt.NumberMode)
	if err != nil {
		return Decoded[T]{}, AppendIssues(structural, decodeIssue(err, enforced.Location()))
	}

	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	dm, perr := s.ParseWithMeta(ctx, v)
	if perr != nil {
		iss, ok := AsIssues(perr)
		if !ok {
			iss = Issues{{Path: "/", Code: CodeParseError, Message: perr.Error(), Cause: perr}}
		}
		return Decoded[T]{}, AppendIssues(structural, iss...)
	}
	if len(structural) > 0 {
		return Decoded[T]{}, structural
	}
	// input-walk presence covers nested containers the schema does not track
	dm.Presence = MergePresenceMaps(collectPresenceMapFromValue(v), dm.Presence)
	dm.Presence = applyPresenceOptions(dm.Presence, normalizePresenceOpt(opt.Presence), opt.PathRender)
	return dm, nil
}

// SafeParseFrom is ParseFrom with the Result contract: failures come back as
// data, never as a raised error.
func SafeParseFrom[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) Result[T] {
	v, err := ParseFrom(ctx, s, src, opts...)
	if err != nil {
		iss, ok := AsIssues(err)
		if !ok {
			iss = Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
		}
		var zero T
		return Result[T]{OK: false, Value: zero, Issues: iss}
	}
	return Result[T]{OK: true, Value: v}
}

// StreamParse parses a JSON document from r using the registered JSON driver.
func StreamParse[T any](ctx context.Context, s Schema[T], r io.Reader, opts ...ParseOpt) (T, error) {
	return ParseFrom(ctx, s, JSONReader(r), opts...)
}

func decodeTree(src Source, mode NumberMode) (any, error) {
	if mode == NumberFloat64 {
		return engine.DecodeAnyFromSourceAsFloat64(engineSource(src))
	}
	return engine.DecodeAnyFromSource(engineSource(src))
}

func firstOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[0]
	}
	return ParseOpt{}
}

// normalizePresenceOpt keeps ParseFromWithMeta collecting by default: callers
// opting into the WithMeta entry point want presence unless they filter it out.
func normalizePresenceOpt(p PresenceOpt) PresenceOpt {
	if !p.Collect && len(p.Include) == 0 && len(p.Exclude) == 0 {
		p.Collect = true
	}
	return p
}

func decodeIssue(err error, off int64) Issue {
	var ie engine.IssueError
	if errors.As(err, &ie) {
		return Issue{Path: ie.Path, Code: ie.Code, Message: ie.Message, Offset: off}
	}
	return Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err, Offset: off}
}
