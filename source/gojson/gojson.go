// Package gojson provides a kata JSON driver backed by github.com/goccy/go-json.
// Importing the package registers the driver, so a blank import is enough:
//
//	import _ "github.com/kataform/kata/source/gojson"
package gojson

import (
	"bytes"
	"encoding/json"
	"io"

	gojson "github.com/goccy/go-json"

	kata "github.com/kataform/kata"
)

func init() { kata.SetJSONDriver(Driver{}) }

// Driver tokenizes JSON with goccy/go-json.
type Driver struct{}

func (Driver) Name() string { return "goccy/go-json" }

func (Driver) FromBytes(b []byte) kata.Source { return newSource(bytes.NewReader(b)) }

func (Driver) FromReader(r io.Reader) kata.Source { return newSource(r) }

type tokenSource struct {
	dec     *gojson.Decoder
	kinds   []bool // true=object, false=array
	keyNext []bool
}

func newSource(r io.Reader) *tokenSource {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return &tokenSource{dec: dec}
}

func (s *tokenSource) NextToken() (kata.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return kata.Token{}, err
	}
	off := s.dec.InputOffset()
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			s.kinds = append(s.kinds, true)
			s.keyNext = append(s.keyNext, true)
			return kata.Token{Kind: kata.TokenBeginObject, Offset: off}, nil
		case '}':
			s.pop()
			s.afterValue()
			return kata.Token{Kind: kata.TokenEndObject, Offset: off}, nil
		case '[':
			s.kinds = append(s.kinds, false)
			s.keyNext = append(s.keyNext, false)
			return kata.Token{Kind: kata.TokenBeginArray, Offset: off}, nil
		default: // ']'
			s.pop()
			s.afterValue()
			return kata.Token{Kind: kata.TokenEndArray, Offset: off}, nil
		}
	case string:
		if s.expectingKey() {
			s.setExpectKey(false)
			return kata.Token{Kind: kata.TokenKey, String: t, Offset: off}, nil
		}
		s.afterValue()
		return kata.Token{Kind: kata.TokenString, String: t, Offset: off}, nil
	case json.Number:
		s.afterValue()
		return kata.Token{Kind: kata.TokenNumber, Number: string(t), Offset: off}, nil
	case bool:
		s.afterValue()
		return kata.Token{Kind: kata.TokenBool, Bool: t, Offset: off}, nil
	case nil:
		s.afterValue()
		return kata.Token{Kind: kata.TokenNull, Offset: off}, nil
	default:
		return kata.Token{}, io.ErrUnexpectedEOF
	}
}

func (s *tokenSource) Location() int64 { return s.dec.InputOffset() }

func (s *tokenSource) pop() {
	if n := len(s.kinds); n > 0 {
		s.kinds = s.kinds[:n-1]
		s.keyNext = s.keyNext[:n-1]
	}
}

func (s *tokenSource) expectingKey() bool {
	n := len(s.kinds)
	return n > 0 && s.kinds[n-1] && s.keyNext[n-1]
}

func (s *tokenSource) setExpectKey(v bool) {
	if n := len(s.keyNext); n > 0 {
		s.keyNext[n-1] = v
	}
}

func (s *tokenSource) afterValue() {
	if n := len(s.kinds); n > 0 && s.kinds[n-1] {
		s.keyNext[n-1] = true
	}
}
