// Package i18n renders issue codes into human-readable messages per
// language. The catalog is a plain dictionary keyed by issue code with
// {param} placeholders filled from Issue.Params.
package i18n

import (
	"fmt"
	"strings"

	kata "github.com/kataform/kata"
)

// Lang selects a message catalog.
type Lang string

const (
	EN Lang = "en"
	JA Lang = "ja"
)

var catalogs = map[Lang]map[string]string{
	EN: {
		kata.CodeInvalidType:      "expected {expected}, got {got}",
		kata.CodeInvalidLiteral:   "expected literal {expected}",
		kata.CodeInvalidEnum:      "value is not a member of the enum",
		kata.CodeUnrecognizedKeys: "unrecognized key {key}",
		kata.CodeInvalidUnion:     "no union alternative matched",
		kata.CodeTooSmall:         "value is too small (min {min})",
		kata.CodeTooBig:           "value is too big (max {max})",
		kata.CodeInvalidFormat:    "invalid {format}",
		kata.CodeNotMultipleOf:    "must be a multiple of {multipleOf}",
		kata.CodeCustom:           "invalid value",
		kata.CodeRequired:         "required",
		kata.CodeParseError:       "input could not be parsed",
		kata.CodeDuplicateKey:     "duplicate key",
		kata.CodeTruncated:        "input exceeds the size limit",
		kata.CodeOverflow:         "number out of range",
		kata.CodeUniqueness:       "duplicate value",
		kata.CodeAsyncRequired:    "schema contains async steps; use the async entry points",
	},
	JA: {
		kata.CodeInvalidType:      "{expected} が必要ですが {got} が入力されました",
		kata.CodeInvalidLiteral:   "リテラル {expected} が必要です",
		kata.CodeInvalidEnum:      "列挙値に含まれていません",
		kata.CodeUnrecognizedKeys: "不明なキー {key} です",
		kata.CodeInvalidUnion:     "どのユニオン候補にも一致しませんでした",
		kata.CodeTooSmall:         "値が小さすぎます (最小 {min})",
		kata.CodeTooBig:           "値が大きすぎます (最大 {max})",
		kata.CodeInvalidFormat:    "{format} の形式が不正です",
		kata.CodeNotMultipleOf:    "{multipleOf} の倍数である必要があります",
		kata.CodeCustom:           "不正な値です",
		kata.CodeRequired:         "必須です",
		kata.CodeParseError:       "入力を解析できませんでした",
		kata.CodeDuplicateKey:     "キーが重複しています",
		kata.CodeTruncated:        "入力がサイズ上限を超えています",
		kata.CodeOverflow:         "数値が範囲外です",
		kata.CodeUniqueness:       "値が重複しています",
		kata.CodeAsyncRequired:    "非同期ステップを含むため async 入口を使用してください",
	},
}

// Message renders one code with params. Unknown languages fall back to EN;
// unknown codes fall back to the code itself.
func Message(lang Lang, code string, params map[string]any) string {
	cat, ok := catalogs[lang]
	if !ok {
		cat = catalogs[EN]
	}
	tmpl, ok := cat[code]
	if !ok {
		if tmpl, ok = catalogs[EN][code]; !ok {
			return code
		}
	}
	out := tmpl
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

// Localize returns a copy of iss with every Message rendered for lang.
func Localize(iss kata.Issues, lang Lang) kata.Issues {
	out := make(kata.Issues, len(iss))
	for i, it := range iss {
		it.Message = Message(lang, it.Code, it.Params)
		out[i] = it
	}
	return out
}
