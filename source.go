package kata

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/kataform/kata/internal/engine"
)

// TokenKind enumerates streaming token kinds surfaced by a Source.
type TokenKind int

const (
	TokenBeginObject TokenKind = iota
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token is a single streaming token with its approximate byte offset in the
// input (-1 when the source cannot report offsets).
type Token struct {
	Kind   TokenKind
	String string
	Number string
	Bool   bool
	Offset int64
}

// Source is a pull-based token stream over an input document. Implementations
// exist for encoding/json, goccy/go-json, YAML documents, and in-memory value
// trees.
type Source interface {
	NextToken() (Token, error)
	Location() int64
}

// JSONDriver is the SPI for pluggable JSON tokenizers. Importing a driver
// package (for example source/gojson) registers it via SetJSONDriver, after
// which JSONBytes and JSONReader use it instead of the encoding/json fallback.
type JSONDriver interface {
	Name() string
	FromBytes(b []byte) Source
	FromReader(r io.Reader) Source
}

var (
	_driverMu  sync.RWMutex
	_jsonDrive JSONDriver
)

// SetJSONDriver installs d as the process-wide JSON tokenizer. Passing nil
// restores the encoding/json fallback.
func SetJSONDriver(d JSONDriver) {
	_driverMu.Lock()
	_jsonDrive = d
	_driverMu.Unlock()
}

func currentJSONDriver() JSONDriver {
	_driverMu.RLock()
	d := _jsonDrive
	_driverMu.RUnlock()
	return d
}

// JSONBytes returns a Source over a JSON document held in memory.
func JSONBytes(b []byte) Source {
	if d := currentJSONDriver(); d != nil {
		return d.FromBytes(b)
	}
	return newStdJSONSource(bytes.NewReader(b))
}

// JSONReader returns a Source over a JSON document read from r.
func JSONReader(r io.Reader) Source {
	if d := currentJSONDriver(); d != nil {
		return d.FromReader(r)
	}
	return newStdJSONSource(r)
}

// ValueSource tokenizes an already-decoded value tree (map[string]any, []any,
// scalars). Non-JSON formats normalize their documents and feed them here.
func ValueSource(v any) Source {
	return sourceFromEngine(engine.NewValueSource(v))
}

// ---- encoding/json fallback tokenizer ----

type stdJSONSource struct {
	dec   *json.Decoder
	stack []bool // per-object frame: true while the next string is a key
	inObj []bool // container kinds: true=object, false=array
}

func newStdJSONSource(r io.Reader) *stdJSONSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &stdJSONSource{dec: dec}
}

func (s *stdJSONSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	off := s.dec.InputOffset()
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			s.inObj = append(s.inObj, true)
			s.stack = append(s.stack, true)
			return Token{Kind: TokenBeginObject, Offset: off}, nil
		case '}':
			s.pop()
			s.afterValue()
			return Token{Kind: TokenEndObject, Offset: off}, nil
		case '[':
			s.inObj = append(s.inObj, false)
			s.stack = append(s.stack, false)
			return Token{Kind: TokenBeginArray, Offset: off}, nil
		default: // ']'
			s.pop()
			s.afterValue()
			return Token{Kind: TokenEndArray, Offset: off}, nil
		}
	case string:
		if s.expectingKey() {
			s.setExpectKey(false)
			return Token{Kind: TokenKey, String: t, Offset: off}, nil
		}
		s.afterValue()
		return Token{Kind: TokenString, String: t, Offset: off}, nil
	case json.Number:
		s.afterValue()
		return Token{Kind: TokenNumber, Number: string(t), Offset: off}, nil
	case bool:
		s.afterValue()
		return Token{Kind: TokenBool, Bool: t, Offset: off}, nil
	case nil:
		s.afterValue()
		return Token{Kind: TokenNull, Offset: off}, nil
	default:
		s.afterValue()
		return Token{}, io.ErrUnexpectedEOF
	}
}

func (s *stdJSONSource) Location() int64 { return s.dec.InputOffset() }

func (s *stdJSONSource) pop() {
	if n := len(s.inObj); n > 0 {
		s.inObj = s.inObj[:n-1]
		s.stack = s.stack[:n-1]
	}
}

func (s *stdJSONSource) expectingKey() bool {
	n := len(s.inObj)
	return n > 0 && s.inObj[n-1] && s.stack[n-1]
}

func (s *stdJSONSource) setExpectKey(v bool) {
	if n := len(s.stack); n > 0 {
		s.stack[n-1] = v
	}
}

func (s *stdJSONSource) afterValue() {
	if n := len(s.inObj); n > 0 && s.inObj[n-1] {
		s.stack[n-1] = true
	}
}

// ---- engine adapters ----

type toEngineSource struct{ src Source }

func (a toEngineSource) NextToken() (engine.Token, error) {
	t, err := a.src.NextToken()
	if err != nil {
		return engine.Token{}, err
	}
	return engine.Token{Kind: engine.Kind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (a toEngineSource) Location() int64 { return a.src.Location() }

type fromEngineSource struct{ ts engine.TokenSource }

func (a fromEngineSource) NextToken() (Token, error) {
	t, err := a.ts.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (a fromEngineSource) Location() int64 { return a.ts.Location() }

func engineSource(src Source) engine.TokenSource {
	if a, ok := src.(fromEngineSource); ok {
		return a.ts
	}
	return toEngineSource{src: src}
}

func sourceFromEngine(ts engine.TokenSource) Source {
	return fromEngineSource{ts: ts}
}

// EnforceSource wraps src with duplicate key, non-finite number, max depth,
// and max bytes enforcement derived from opt. Non-fatal issues are delivered
// to sink.
func EnforceSource(src Source, opt ParseOpt, sink func(Issue)) Source {
	eo := engine.EnforceOptions{
		MaxDepth: opt.MaxDepth,
		MaxBytes: opt.MaxBytes,
		AllowNaN: opt.Strictness.AllowNaN,
		FailFast: opt.FailFast,
	}
	switch opt.Strictness.OnDuplicateKey {
	case Warn:
		eo.OnDuplicate = engine.DupWarn
	case Error:
		eo.OnDuplicate = engine.DupError
	default:
		eo.OnDuplicate = engine.DupIgnore
	}
	if sink != nil {
		eo.IssueSink = func(si engine.SimpleIssue) {
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
		}
	}
	return sourceFromEngine(engine.WrapWithEnforcement(engineSource(src), eo))
}
