package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling at the token level.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a lightweight issue usable without importing the root package.
type SimpleIssue struct {
	Path    string
	Code    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// AllowNaN admits NaN and ±Inf number tokens. JSON text cannot carry
	// them, but value trees built from Go floats can.
	AllowNaN bool
	// IssueSink receives non-fatal issues (warn-level duplicates). Fatal
	// issues surface as IssueError from NextToken instead.
	IssueSink func(SimpleIssue)
	// FailFast stops at the first issue encountered (duplicate/depth/bytes).
	FailFast bool
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type enforceFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key
// policy, maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []enforceFrame
	depth int
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	npath := normalizeIssuePath(e.currentPathForToken(tok))

	switch tok.Kind {
	case KindBeginObject:
		e.stack = append(e.stack, enforceFrame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: npath})
		if err := e.enterDepth(npath); err != nil {
			return Token{}, err
		}
	case KindBeginArray:
		e.stack = append(e.stack, enforceFrame{kind: kindArray, path: npath})
		if err := e.enterDepth(npath); err != nil {
			return Token{}, err
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		if e.depth > 0 {
			e.depth--
		}
		e.noteValueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if e.opt.OnDuplicate != DupIgnore {
					if _, ok := top.keys[tok.String]; ok {
						si := SimpleIssue{Code: "duplicate_key", Path: npath, Message: "key '" + tok.String + "' duplicated"}
						if e.opt.OnDuplicate == DupError || e.opt.FailFast {
							// fatal issues travel through the error return only
							return Token{}, IssueError{si}
						}
						if e.opt.IssueSink != nil {
							e.opt.IssueSink(si)
						}
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		if tok.Kind == KindNumber && !e.opt.AllowNaN && nonFiniteNumber(tok.Number) {
			si := SimpleIssue{Code: "invalid_type", Path: npath, Message: "non-finite number " + tok.Number}
			return Token{}, IssueError{si}
		}
		e.noteValueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			si := SimpleIssue{Code: "truncated", Path: npath, Message: "max bytes exceeded"}
			return Token{}, IssueError{si}
		}
	}

	return tok, nil
}

func (e *enforcingTokenSource) enterDepth(path string) error {
	e.depth++
	if e.opt.MaxDepth > 0 && e.depth > e.opt.MaxDepth {
		si := SimpleIssue{Code: "parse_error", Path: path, Message: "max depth exceeded"}
		return IssueError{si}
	}
	return nil
}

// noteValueDone flips the enclosing object frame back to key position after a
// value token completed.
func (e *enforcingTokenSource) noteValueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) currentPathForToken(tok Token) string {
	if len(e.stack) == 0 {
		if tok.Kind == KindKey {
			return joinJSONPointer("", tok.String)
		}
		return ""
	}

	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		top.pendingKey = tok.String
		return joinJSONPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			p := joinJSONPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
			return p
		}
		if top.pendingKey != "" || !top.expectingKey {
			return joinJSONPointer(top.path, top.pendingKey)
		}
		return top.path
	default:
		return top.path
	}
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

// nonFiniteNumber matches the textual forms value sources emit for NaN and
// infinities. Valid JSON number tokens never take these shapes.
func nonFiniteNumber(s string) bool {
	switch s {
	case "NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity", "+Infinity", "-Infinity":
		return true
	}
	return false
}

func normalizeIssuePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinJSONPointer(base, token string) string {
	if base == "" || base == "/" {
		return "/" + jsonPointerEscaper.Replace(token)
	}
	return base + "/" + jsonPointerEscaper.Replace(token)
}
