// Package codegen synthesizes the JSX wrapper entry module that mounts a
// page group's layout chain, either for client hydration or server
// rendering.
package codegen

import (
	"fmt"
	"strings"
)

// BuildEntrypoint generates the synthetic entry-module source for a page
// group. pathGroup is ordered outermost-layout-first, innermost-view-last.
// liveReloadImport is the module specifier the host environment provides
// for its live-reload mount. When isServer is true, the module exports an
// Index function that renders to a string instead of hydrating the DOM.
func BuildEntrypoint(pathGroup []string, isServer bool, liveReloadImport string) string {
	var b strings.Builder

	b.WriteString("import React from 'react';\n")
	fmt.Fprintf(&b, "import mountLiveReload from '%s';\n\n", liveReloadImport)

	for i, path := range pathGroup {
		fmt.Fprintf(&b, "import Layout%d from '%s';\n", i, path)
	}

	b.WriteString("\nconst Entrypoint = () => {\n")
	b.WriteString("    mountLiveReload({});\n")
	b.WriteString("    return (\n")

	for i := range pathGroup {
		b.WriteString(strings.Repeat("        ", i+1))
		fmt.Fprintf(&b, "<Layout%d>\n", i)
	}
	for i := len(pathGroup) - 1; i >= 0; i-- {
		b.WriteString(strings.Repeat("        ", i+1))
		fmt.Fprintf(&b, "</Layout%d>\n", i)
	}

	b.WriteString("    );\n")
	b.WriteString("};\n\n")

	if !isServer {
		b.WriteString("import { hydrateRoot } from 'react-dom/client';\n")
		b.WriteString("const container = document.getElementById('root');\n")
		b.WriteString("hydrateRoot(container, <Entrypoint />);\n")
	} else {
		b.WriteString("import { renderToString } from 'react-dom/server';\n")
		b.WriteString("export const Index = () => renderToString(<Entrypoint />);\n")
	}

	return b.String()
}
