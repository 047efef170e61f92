// Package sourcemap parses v3 source-map "mappings" strings into indexed
// position tuples, and rewrites source-map paths emitted by the bundler.
package sourcemap

import (
	"fmt"
	"strings"

	"github.com/piercefreeman/mountaineer/internal/vlq"
)

// Position is a 1-based (generated line, generated column) key, matching
// the position format used in engine exception reporting.
type Position struct {
	Line   int32
	Column int32
}

// MapMetadata holds the absolute, post-delta-accumulation values for one
// generated position.
type MapMetadata struct {
	LineNumber   int32
	ColumnNumber int32
	SourceIndex  *int32
	SourceLine   *int32
	SourceColumn *int32
	SymbolIndex  *int32
}

func newMetadata(line, column int32) MapMetadata {
	return MapMetadata{LineNumber: line, ColumnNumber: column}
}

// ParseMappings walks the compact "mappings" field of a v3 source map,
// accumulating deltas, and returns a map keyed by 1-based
// (line+1, column+1) generated position.
func ParseMappings(mappings string) (map[Position]MapMetadata, error) {
	parsed := make(map[Position]MapMetadata)
	state := newMetadata(-1, -1)

	for line, encoded := range strings.Split(mappings, ";") {
		for _, component := range strings.Split(encoded, ",") {
			if strings.TrimSpace(component) == "" {
				continue
			}

			metadata, err := vlqToMetadata(int32(line), component)
			if err != nil {
				return nil, err
			}
			metadata = mergeRelative(metadata, &state)

			parsed[Position{Line: metadata.LineNumber + 1, Column: metadata.ColumnNumber + 1}] = metadata
		}
	}

	return parsed, nil
}

func vlqToMetadata(line int32, component string) (MapMetadata, error) {
	values, err := vlq.Decode(component)
	if err != nil {
		return MapMetadata{}, err
	}

	switch len(values) {
	case 1:
		return newMetadata(line, values[0]), nil
	case 4, 5:
		metadata := newMetadata(line, values[0])
		sourceIndex := values[1]
		sourceLine := values[2]
		sourceColumn := values[3]
		metadata.SourceIndex = &sourceIndex
		metadata.SourceLine = &sourceLine
		metadata.SourceColumn = &sourceColumn
		if len(values) == 5 {
			symbolIndex := values[4]
			metadata.SymbolIndex = &symbolIndex
		}
		return metadata, nil
	default:
		return MapMetadata{}, fmt.Errorf("sourcemap: vlq group should have 1, 4, or 5 components, got %d: %v", len(values), values)
	}
}

// mergeRelative merges current into the rolling state in place and returns
// the absolutized current metadata. Column is relative only within the
// same generated line; the other four running values are always relative.
func mergeRelative(current MapMetadata, state *MapMetadata) MapMetadata {
	if state.LineNumber == current.LineNumber {
		current.ColumnNumber += state.ColumnNumber
	}

	current.SourceIndex = mergeAttr(current.SourceIndex, state.SourceIndex)
	current.SourceLine = mergeAttr(current.SourceLine, state.SourceLine)
	current.SourceColumn = mergeAttr(current.SourceColumn, state.SourceColumn)
	current.SymbolIndex = mergeAttr(current.SymbolIndex, state.SymbolIndex)

	state.LineNumber = current.LineNumber
	state.ColumnNumber = current.ColumnNumber
	state.SourceIndex = updateAttr(state.SourceIndex, current.SourceIndex)
	state.SourceLine = updateAttr(state.SourceLine, current.SourceLine)
	state.SourceColumn = updateAttr(state.SourceColumn, current.SourceColumn)
	state.SymbolIndex = updateAttr(state.SymbolIndex, current.SymbolIndex)

	return current
}

func mergeAttr(current, state *int32) *int32 {
	if current == nil || state == nil {
		return current
	}
	v := *current + *state
	return &v
}

func updateAttr(state, current *int32) *int32 {
	if current == nil {
		return state
	}
	v := *current
	return &v
}
