package sourcemap

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
)

// sourceMappingURLRe matches a sourceMappingURL directive whose value ends
// in ".map", capturing everything up to the ".map" extension. Deliberately
// naive: it rewrites the first match anywhere in the script, including
// inside a string or comment that happens to contain the same literal.
var sourceMappingURLRe = regexp.MustCompile(`(//# sourceMappingURL=)(\S+)\.map`)

// MakeSourceMapPathsAbsolute parses a source-map JSON document and
// absolutizes every entry of its "sources" array against the directory of
// originalScriptPath, when the entry is relative. Absolutization is purely
// lexical (filepath.Clean), it does not require the path to exist.
//
// The document is round-tripped through a generic map, so any field this
// function does not explicitly touch survives only if encoding/json's
// generic decode preserves it losslessly — numeric precision and key order
// are not guaranteed across the round trip. This is a known, intentional
// limitation carried over rather than fixed.
func MakeSourceMapPathsAbsolute(contents, originalScriptPath string) (string, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(contents), &doc); err != nil {
		return "", fmt.Errorf("sourcemap: parse failed: %w", err)
	}

	baseDir := filepath.Dir(originalScriptPath)

	rawSources, ok := doc["sources"]
	if ok {
		sources, ok := rawSources.([]interface{})
		if !ok {
			return "", fmt.Errorf("sourcemap: \"sources\" is not an array")
		}
		for i, rawSource := range sources {
			source, ok := rawSource.(string)
			if !ok {
				continue
			}
			if !filepath.IsAbs(source) {
				source = filepath.Join(baseDir, source)
			}
			sources[i] = filepath.Clean(source)
		}
		doc["sources"] = sources
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("sourcemap: re-serialize failed: %w", err)
	}
	return string(out), nil
}

// UpdateSourceMapPath substitutes the stem of the first
// sourceMappingURL=<stem>.map directive in contents with newName, keeping the
// ".map" extension. Later occurrences of the directive's pattern are left
// untouched, matching the original, brittle substitution behavior.
func UpdateSourceMapPath(contents, newName string) string {
	replaced := false
	return sourceMappingURLRe.ReplaceAllStringFunc(contents, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		groups := sourceMappingURLRe.FindStringSubmatch(match)
		return groups[1] + newName + ".map"
	})
}
