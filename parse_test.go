package kata_test

import (
	"context"
	"math"
	"strings"
	"testing"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

func userSchema() kata.Schema[map[string]any] {
	return dsl.Object().
		Field("name", dsl.String().Min(1)).
		Field("age", dsl.Int().Min(0)).
		MustBuild()
}

func findCode(iss kata.Issues, code string) *kata.Issue {
	for i := range iss {
		if iss[i].Code == code {
			return &iss[i]
		}
	}
	return nil
}

func TestParseFromJSONBytes(t *testing.T) {
	ctx := context.Background()
	got, err := kata.ParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":"bob","age":30}`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["name"] != "bob" || got["age"] != int64(30) {
		t.Fatalf("got %v", got)
	}
}

func TestParseFromReportsSchemaIssues(t *testing.T) {
	ctx := context.Background()
	_, err := kata.ParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":"","age":-1}`)))
	iss, ok := kata.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("want 2 issues, got %v", err)
	}
	if iss[0].Path != "/name" || iss[1].Path != "/age" {
		t.Fatalf("paths = %s, %s", iss[0].Path, iss[1].Path)
	}
}

func TestParseFromMalformedJSON(t *testing.T) {
	ctx := context.Background()
	_, err := kata.ParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":`)))
	iss, ok := kata.AsIssues(err)
	if !ok || findCode(iss, kata.CodeParseError) == nil {
		t.Fatalf("want parse_error, got %v", err)
	}
}

func TestDuplicateKeyError(t *testing.T) {
	ctx := context.Background()
	opt := kata.ParseOpt{Strictness: kata.Strictness{OnDuplicateKey: kata.Error}}
	_, err := kata.ParseFrom(ctx, userSchema(),
		kata.JSONBytes([]byte(`{"name":"a","name":"b","age":1}`)), opt)
	iss, ok := kata.AsIssues(err)
	if !ok {
		t.Fatalf("want issues, got %v", err)
	}
	it := findCode(iss, kata.CodeDuplicateKey)
	if it == nil || it.Path != "/name" {
		t.Fatalf("want duplicate_key at /name, got %v", iss)
	}
}

func TestDuplicateKeyWarnStillReports(t *testing.T) {
	ctx := context.Background()
	opt := kata.ParseOpt{Strictness: kata.Strictness{OnDuplicateKey: kata.Warn}}
	_, err := kata.ParseFrom(ctx, userSchema(),
		kata.JSONBytes([]byte(`{"name":"a","name":"b","age":1}`)), opt)
	iss, ok := kata.AsIssues(err)
	if !ok || findCode(iss, kata.CodeDuplicateKey) == nil {
		t.Fatalf("warn mode must surface the duplicate, got %v", err)
	}
}

func TestMaxDepthEnforced(t *testing.T) {
	ctx := context.Background()
	s := dsl.SchemaOf(dsl.Array(dsl.Array(dsl.Array(dsl.Float()))).AnyAdapter())
	opt := kata.ParseOpt{MaxDepth: 2}
	_, err := kata.ParseFrom(ctx, s, kata.JSONBytes([]byte(`[[[1]]]`)), opt)
	iss, ok := kata.AsIssues(err)
	if !ok || findCode(iss, kata.CodeParseError) == nil {
		t.Fatalf("want depth parse_error, got %v", err)
	}
}

func TestMaxBytesEnforced(t *testing.T) {
	ctx := context.Background()
	doc := `{"name":"` + strings.Repeat("x", 100) + `","age":1}`
	opt := kata.ParseOpt{MaxBytes: 16}
	_, err := kata.ParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(doc)), opt)
	iss, ok := kata.AsIssues(err)
	if !ok || findCode(iss, kata.CodeTruncated) == nil {
		t.Fatalf("want truncated, got %v", err)
	}
}

func TestSafeParseFromNeverRaises(t *testing.T) {
	ctx := context.Background()
	res := kata.SafeParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":1}`)))
	if res.OK {
		t.Fatal("want failure result")
	}
	if len(res.Issues) == 0 {
		t.Fatal("failure must carry at least one issue")
	}

	res = kata.SafeParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":"a","age":2}`)))
	if !res.OK || res.Err() != nil {
		t.Fatalf("success result must carry no issues: %+v", res)
	}
}

func TestStreamParse(t *testing.T) {
	ctx := context.Background()
	got, err := kata.StreamParse(ctx, userSchema(), strings.NewReader(`{"name":"bob","age":3}`))
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got["age"] != int64(3) {
		t.Fatalf("got %v", got)
	}
}

func TestParseFromWithMetaCollectsPresence(t *testing.T) {
	ctx := context.Background()
	dm, err := kata.ParseFromWithMeta(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":"bob","age":3}`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if dm.Presence["/"]&kata.PresenceSeen == 0 {
		t.Error("root presence missing")
	}
	if dm.Presence["/name"]&kata.PresenceSeen == 0 {
		t.Error("/name presence missing")
	}
}

func TestValueSourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := kata.ValueSource(map[string]any{"name": "bob", "age": 3})
	got, err := kata.ParseFrom(ctx, userSchema(), src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["name"] != "bob" || got["age"] != int64(3) {
		t.Fatalf("got %v", got)
	}
}

func TestFailFastOption(t *testing.T) {
	ctx := context.Background()
	opt := kata.ParseOpt{FailFast: true}
	_, err := kata.ParseFrom(ctx, userSchema(), kata.JSONBytes([]byte(`{"name":1,"age":"x"}`)), opt)
	iss, ok := kata.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("fail-fast must stop at the first issue, got %v", err)
	}
}

func TestNumberModeFloat64(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("v", dsl.Float()).MustBuild()
	opt := kata.ParseOpt{NumberMode: kata.NumberFloat64}
	got, err := kata.ParseFrom(ctx, s, kata.JSONBytes([]byte(`{"v":1.25}`)), opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["v"] != 1.25 {
		t.Fatalf("v = %v (%T)", got["v"], got["v"])
	}
}

func TestNonFiniteNumbersRejected(t *testing.T) {
	ctx := context.Background()

	_, err := kata.ParseFrom(ctx, dsl.Float().Schema(), kata.ValueSource(math.NaN()))
	iss, ok := kata.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if findCode(iss, kata.CodeInvalidType) == nil {
		t.Fatalf("issues = %+v", iss)
	}

	s := dsl.Object().Field("ratio", dsl.Float()).MustBuild()
	_, err = kata.ParseFrom(ctx, s, kata.ValueSource(map[string]any{"ratio": math.Inf(1)}))
	iss, ok = kata.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	it := findCode(iss, kata.CodeInvalidType)
	if it == nil || it.Path != "/ratio" {
		t.Fatalf("issues = %+v", iss)
	}
}

func TestAllowNaNAdmitsNonFinite(t *testing.T) {
	ctx := context.Background()
	s := dsl.Float().Schema()
	opt := kata.ParseOpt{Strictness: kata.Strictness{AllowNaN: true}}

	got, err := kata.ParseFrom(ctx, s, kata.ValueSource(math.NaN()), opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("got = %v, want NaN", got)
	}

	got, err = kata.ParseFrom(ctx, s, kata.ValueSource(math.Inf(-1)), opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !math.IsInf(got, -1) {
		t.Errorf("got = %v, want -Inf", got)
	}
}
