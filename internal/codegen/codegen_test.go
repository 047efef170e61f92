package codegen

import (
	"strings"
	"testing"
)

func TestBuildEntrypointClient(t *testing.T) {
	out := BuildEntrypoint([]string{"/abs/layout.jsx", "/abs/view.jsx"}, false, "mountaineer/live_reload")

	for _, want := range []string{
		"import React from 'react';",
		"import mountLiveReload from 'mountaineer/live_reload';",
		"import Layout0 from '/abs/layout.jsx';",
		"import Layout1 from '/abs/view.jsx';",
		"<Layout0>",
		"<Layout1>",
		"</Layout1>",
		"</Layout0>",
		"import { hydrateRoot } from 'react-dom/client';",
		"hydrateRoot(container, <Entrypoint />);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected generated entrypoint to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "renderToString") {
		t.Errorf("client entrypoint should not reference renderToString")
	}
}

func TestBuildEntrypointServer(t *testing.T) {
	out := BuildEntrypoint([]string{"/abs/layout.jsx"}, true, "mountaineer/live_reload")

	for _, want := range []string{
		"import { renderToString } from 'react-dom/server';",
		"export const Index = () => renderToString(<Entrypoint />);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected server entrypoint to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hydrateRoot") {
		t.Errorf("server entrypoint should not reference hydrateRoot")
	}
}

func TestBuildEntrypointNestingOrder(t *testing.T) {
	out := BuildEntrypoint([]string{"/a.jsx", "/b.jsx", "/c.jsx"}, false, "live")

	openIdx := map[string]int{}
	closeIdx := map[string]int{}
	for i := 0; i < 3; i++ {
		openTag := "<Layout" + itoa(i) + ">"
		closeTag := "</Layout" + itoa(i) + ">"
		openIdx[openTag] = strings.Index(out, openTag)
		closeIdx[closeTag] = strings.Index(out, closeTag)
	}

	// Outermost (Layout0) opens first and closes last.
	if openIdx["<Layout0>"] > openIdx["<Layout1>"] || openIdx["<Layout1>"] > openIdx["<Layout2>"] {
		t.Errorf("expected opening tags in outer-to-inner order")
	}
	if closeIdx["</Layout2>"] > closeIdx["</Layout1>"] || closeIdx["</Layout1>"] > closeIdx["</Layout0>"] {
		t.Errorf("expected closing tags in inner-to-outer order")
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}
