package sourcemap

import (
	"encoding/json"
	"testing"
)

func TestMakeSourceMapPathsAbsolute(t *testing.T) {
	contents := `{"version":3,"sources":["./src/f.js","/abs/../abs/src/g.js"],"names":[],"mappings":""}`
	out, err := MakeSourceMapPathsAbsolute(contents, "/tmp/dist/main.js")
	if err != nil {
		t.Fatalf("MakeSourceMapPathsAbsolute error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}

	sources, ok := doc["sources"].([]interface{})
	if !ok || len(sources) != 2 {
		t.Fatalf("unexpected sources: %v", doc["sources"])
	}
	if sources[0] != "/tmp/dist/src/f.js" {
		t.Errorf("sources[0] = %v, want /tmp/dist/src/f.js", sources[0])
	}
	if sources[1] != "/abs/src/g.js" {
		t.Errorf("sources[1] = %v, want /abs/src/g.js", sources[1])
	}
}

func TestUpdateSourceMapPathReplacesFirstOnly(t *testing.T) {
	contents := "console.log(1);\n//# sourceMappingURL=entrypoint0.map"
	got := UpdateSourceMapPath(contents, "entrypoint0-abc123")
	want := "console.log(1);\n//# sourceMappingURL=entrypoint0-abc123.map"
	if got != want {
		t.Errorf("UpdateSourceMapPath = %q, want %q", got, want)
	}

	twice := "a;\n//# sourceMappingURL=one.map\n//# sourceMappingURL=two.map"
	got = UpdateSourceMapPath(twice, "new")
	want = "a;\n//# sourceMappingURL=new.map\n//# sourceMappingURL=two.map"
	if got != want {
		t.Errorf("UpdateSourceMapPath with two directives = %q, want %q", got, want)
	}
}

func TestUpdateSourceMapPathNoDirective(t *testing.T) {
	contents := "console.log(1);"
	got := UpdateSourceMapPath(contents, "new")
	if got != contents {
		t.Errorf("UpdateSourceMapPath should be a no-op without a directive, got %q", got)
	}
}
