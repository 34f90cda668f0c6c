package yaml_test

import (
	"context"
	"strings"
	"testing"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
	"github.com/kataform/kata/source/yaml"
)

func TestBytesParsesIntoSchema(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("name", dsl.String()).
		Field("replicas", dsl.Int().Min(1)).
		Field("enabled", dsl.Bool()).
		MustBuild()

	doc := []byte("name: web\nreplicas: 3\nenabled: true\n")
	src, err := yaml.Bytes(doc)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	got, err := kata.ParseFrom(ctx, s, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["name"] != "web" || got["replicas"] != int64(3) || got["enabled"] != true {
		t.Fatalf("got %v", got)
	}
}

func TestBytesNestedAndLists(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().
		Field("spec", dsl.Object().
			Field("ports", dsl.Array(dsl.Int()))).
		MustBuild()

	doc := []byte("spec:\n  ports:\n    - 80\n    - 443\n")
	src, err := yaml.Bytes(doc)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	got, err := kata.ParseFrom(ctx, s, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spec := got["spec"].(map[string]any)
	ports := spec["ports"].([]any)
	if len(ports) != 2 || ports[0] != int64(80) {
		t.Fatalf("ports = %v", ports)
	}
}

func TestBytesSchemaIssuesKeepPointerPaths(t *testing.T) {
	ctx := context.Background()
	s := dsl.Object().Field("replicas", dsl.Int()).MustBuild()

	src, err := yaml.Bytes([]byte("replicas: lots\n"))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	_, err = kata.ParseFrom(ctx, s, src)
	iss, ok := kata.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/replicas" || iss[0].Code != kata.CodeInvalidType {
		t.Fatalf("got %v", err)
	}
}

func TestBytesMalformed(t *testing.T) {
	if _, err := yaml.Bytes([]byte(":\n  - ]broken")); err == nil {
		t.Fatal("malformed YAML must fail at decode")
	}
}

func TestReaderEmptyDocumentIsNull(t *testing.T) {
	src, err := yaml.Reader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	ctx := context.Background()
	s := dsl.Object().Field("a", dsl.String()).Optional().MustBuild()
	_, err = kata.ParseFrom(ctx, s, src)
	iss, ok := kata.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != kata.CodeInvalidType {
		t.Fatalf("empty document decodes to null, want invalid_type, got %v", err)
	}
}
