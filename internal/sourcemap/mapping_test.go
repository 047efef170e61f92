package sourcemap

import "testing"

func TestParseMappingsAbsoluteValues(t *testing.T) {
	// Two groups on the same generated line: column deltas accumulate,
	// the other running values accumulate regardless of line.
	mappings := "AAAA,CAAC"
	parsed, err := ParseMappings(mappings)
	if err != nil {
		t.Fatalf("ParseMappings error: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(parsed))
	}
	// "CAAC" decodes to [1, 0, 0, 1]: column 0+1 and source column 0+1.
	second, ok := parsed[Position{Line: 1, Column: 2}]
	if !ok {
		t.Fatalf("expected an entry at generated (1, 2), got %v", parsed)
	}
	if *second.SourceIndex != 0 || *second.SourceLine != 0 || *second.SourceColumn != 1 {
		t.Errorf("second group = (%d, %d, %d), want (0, 0, 1)", *second.SourceIndex, *second.SourceLine, *second.SourceColumn)
	}
}

func TestParseMappingsColumnResetsAcrossLine(t *testing.T) {
	// "UAAA" (column delta 10) on line 0, then ";" then "oBAAA" (column delta 20) on line 1.
	// Absolute column on line 0 is 10; crossing ; resets the rolling column so
	// line 1's absolute column is 20, not 30.
	mappings := "UAAA;oBAAA"
	parsed, err := ParseMappings(mappings)
	if err != nil {
		t.Fatalf("ParseMappings error: %v", err)
	}

	found := map[Position]MapMetadata{}
	for pos, md := range parsed {
		found[pos] = md
	}

	var firstLine, secondLine *MapMetadata
	for pos, md := range found {
		if pos.Line == 1 {
			m := md
			firstLine = &m
		}
		if pos.Line == 2 {
			m := md
			secondLine = &m
		}
	}
	if firstLine == nil || secondLine == nil {
		t.Fatalf("expected entries on generated lines 1 and 2, got %v", found)
	}
	if firstLine.ColumnNumber != 10 {
		t.Errorf("line 1 ColumnNumber = %d, want 10", firstLine.ColumnNumber)
	}
	if secondLine.ColumnNumber != 20 {
		t.Errorf("line 2 ColumnNumber = %d, want 20 (reset, not 30)", secondLine.ColumnNumber)
	}
}

func TestParseMappingsEmptyGroupsAdvanceLineOnly(t *testing.T) {
	parsed, err := ParseMappings(";;")
	if err != nil {
		t.Fatalf("ParseMappings error: %v", err)
	}
	if len(parsed) != 0 {
		t.Errorf("expected no entries for empty groups, got %d", len(parsed))
	}
}

func TestParseMappingsInvalidGroupLength(t *testing.T) {
	// "CA" decodes to two independent values [1, 0] (neither char sets the
	// continuation bit), a length-2 group which is not a valid mapping.
	if _, err := ParseMappings("CA"); err == nil {
		t.Fatal("expected error for invalid VLQ group length")
	}
}

func TestMergeRelativeSameLine(t *testing.T) {
	state := MapMetadata{
		LineNumber:   1,
		ColumnNumber: 10,
		SourceIndex:  ptr(int32(10)),
		SourceLine:   ptr(int32(10)),
		SourceColumn: ptr(int32(10)),
		SymbolIndex:  ptr(int32(10)),
	}
	current := MapMetadata{
		LineNumber:   1,
		ColumnNumber: 20,
		SourceIndex:  ptr(int32(20)),
		SourceLine:   ptr(int32(20)),
		SourceColumn: ptr(int32(20)),
		SymbolIndex:  ptr(int32(20)),
	}

	result := mergeRelative(current, &state)

	if result.ColumnNumber != 30 {
		t.Errorf("ColumnNumber = %d, want 30", result.ColumnNumber)
	}
	if *result.SourceIndex != 30 {
		t.Errorf("SourceIndex = %d, want 30", *result.SourceIndex)
	}
	if state.ColumnNumber != 30 {
		t.Errorf("state.ColumnNumber = %d, want 30", state.ColumnNumber)
	}
}

func TestMergeRelativeDifferentLineResetsColumn(t *testing.T) {
	state := MapMetadata{
		LineNumber:   1,
		ColumnNumber: 10,
		SourceIndex:  ptr(int32(10)),
		SourceLine:   ptr(int32(10)),
		SourceColumn: ptr(int32(10)),
		SymbolIndex:  ptr(int32(10)),
	}
	current := MapMetadata{
		LineNumber:   2,
		ColumnNumber: 20,
		SourceIndex:  ptr(int32(20)),
		SourceLine:   ptr(int32(20)),
		SourceColumn: ptr(int32(20)),
		SymbolIndex:  ptr(int32(20)),
	}

	result := mergeRelative(current, &state)

	if result.ColumnNumber != 20 {
		t.Errorf("ColumnNumber = %d, want 20 (reset, not merged)", result.ColumnNumber)
	}
	if *result.SourceIndex != 30 {
		t.Errorf("SourceIndex = %d, want 30 (still merged across lines)", *result.SourceIndex)
	}
}

func ptr[T any](v T) *T { return &v }
