package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// NewValueSource tokenizes an already-decoded value tree (map[string]any,
// []any, scalars). Object keys are emitted in sorted order so tokenization is
// deterministic. Non-JSON sources (YAML and friends) normalize their documents
// into a value tree and feed it through here.
func NewValueSource(v any) TokenSource {
	s := &valueSource{}
	s.push(v)
	return s
}

type valueSource struct {
	stack []valueFrame
}

type valueFrame struct {
	// exactly one of value / obj / arr is active
	value    any
	emitted  bool
	obj      map[string]any
	keys     []string
	keyIdx   int
	keySent  bool
	arr      []any
	arrIdx   int
	isObj    bool
	isArr    bool
	opened   bool
	finished bool
}

func (s *valueSource) push(v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s.stack = append(s.stack, valueFrame{obj: t, keys: keys, isObj: true})
	case []any:
		s.stack = append(s.stack, valueFrame{arr: t, isArr: true})
	default:
		s.stack = append(s.stack, valueFrame{value: v})
	}
}

func (s *valueSource) NextToken() (Token, error) {
	for {
		if len(s.stack) == 0 {
			return Token{}, io.EOF
		}
		top := &s.stack[len(s.stack)-1]

		switch {
		case top.isObj:
			if !top.opened {
				top.opened = true
				return Token{Kind: KindBeginObject, Offset: -1}, nil
			}
			if top.keyIdx >= len(top.keys) {
				s.stack = s.stack[:len(s.stack)-1]
				return Token{Kind: KindEndObject, Offset: -1}, nil
			}
			k := top.keys[top.keyIdx]
			if !top.keySent {
				top.keySent = true
				return Token{Kind: KindKey, String: k, Offset: -1}, nil
			}
			top.keySent = false
			top.keyIdx++
			s.push(top.obj[k])
		case top.isArr:
			if !top.opened {
				top.opened = true
				return Token{Kind: KindBeginArray, Offset: -1}, nil
			}
			if top.arrIdx >= len(top.arr) {
				s.stack = s.stack[:len(s.stack)-1]
				return Token{Kind: KindEndArray, Offset: -1}, nil
			}
			v := top.arr[top.arrIdx]
			top.arrIdx++
			s.push(v)
		default:
			if top.emitted {
				s.stack = s.stack[:len(s.stack)-1]
				continue
			}
			top.emitted = true
			s.stack = s.stack[:len(s.stack)-1]
			return scalarToken(top.value)
		}
	}
}

func (s *valueSource) Location() int64 { return -1 }

func scalarToken(v any) (Token, error) {
	switch t := v.(type) {
	case nil:
		return Token{Kind: KindNull, Offset: -1}, nil
	case string:
		return Token{Kind: KindString, String: t, Offset: -1}, nil
	case bool:
		return Token{Kind: KindBool, Bool: t, Offset: -1}, nil
	case json.Number:
		return Token{Kind: KindNumber, Number: string(t), Offset: -1}, nil
	case float64:
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(t, 'g', -1, 64), Offset: -1}, nil
	case float32:
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(float64(t), 'g', -1, 32), Offset: -1}, nil
	case int:
		return Token{Kind: KindNumber, Number: strconv.FormatInt(int64(t), 10), Offset: -1}, nil
	case int64:
		return Token{Kind: KindNumber, Number: strconv.FormatInt(t, 10), Offset: -1}, nil
	case uint64:
		return Token{Kind: KindNumber, Number: strconv.FormatUint(t, 10), Offset: -1}, nil
	default:
		return Token{}, fmt.Errorf("engine: unsupported scalar %T", v)
	}
}
