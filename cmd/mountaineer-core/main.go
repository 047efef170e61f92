// Command mountaineer-core exposes the bundler/SSR core as a CLI, primarily
// so it can be invoked as a subprocess from a host language binding; each
// subcommand reads its bulk input (page groups, mappings, source text) from
// a file or stdin and writes a JSON result to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/piercefreeman/mountaineer/internal/bundler"
	"github.com/piercefreeman/mountaineer/internal/config"
	"github.com/piercefreeman/mountaineer/internal/jslex"
	"github.com/piercefreeman/mountaineer/internal/mlog"
	"github.com/piercefreeman/mountaineer/internal/orchestrate"
	"github.com/piercefreeman/mountaineer/internal/sourcemap"
	"github.com/piercefreeman/mountaineer/internal/ssrengine"
)

// projectConfigPath is the optional mountaineer.toml the core looks for in
// the working directory it's invoked from.
const projectConfigPath = "mountaineer.toml"

var opts = struct {
	Usage string

	RenderSSR struct {
		Source        string `short:"s" long:"source" description:"Path to compiled server bundle source (- for stdin)" default:"-"`
		HardTimeoutMS int    `long:"hard-timeout-ms" description:"Hard wall-clock timeout in milliseconds (0 = none)" default:"0"`
	} `command:"render-ssr" description:"Evaluate a compiled server bundle and return its rendered HTML"`

	ParseMappings struct {
		Mappings string `short:"m" long:"mappings" description:"Path to a file containing the mappings string (- for stdin)" default:"-"`
	} `command:"parse-mappings" description:"Decode a source map's mappings field into absolute position tuples"`

	StripComments struct {
		Source        string `short:"s" long:"source" description:"Path to JS source (- for stdin)" default:"-"`
		SkipWhitespace bool  `long:"skip-whitespace" description:"Also discard whitespace outside strings"`
	} `command:"strip-comments" description:"Strip JS comments, preserving string/template-literal contents"`

	CompileProduction struct {
		Groups           string `short:"g" long:"groups" required:"true" description:"Path to a JSON file: list of page groups (list of absolute module path lists)"`
		NodeModulesPath  string `long:"node-modules-path" description:"Absolute node_modules root (overrides mountaineer.toml's node_modules_path)"`
		Environment      string `long:"environment" description:"process.env.NODE_ENV value (overrides mountaineer.toml's environment)"`
		Minify           bool   `long:"minify" description:"Minify emitted output (also enabled by mountaineer.toml's minify = true)"`
		LiveReloadImport string `long:"live-reload-import" description:"Import specifier for the live-reload mount"`
		IsServer         bool   `long:"server" description:"Bundle for server-side rendering instead of the client"`
		Tsconfig         string `long:"tsconfig" description:"Path to tsconfig.json"`
	} `command:"compile-production" description:"Bundle page groups together, preserving input order in the result"`

	CompileIndependent struct {
		Groups           string `short:"g" long:"groups" required:"true" description:"Path to a JSON file: list of page groups (list of absolute module path lists)"`
		NodeModulesPath  string `long:"node-modules-path" description:"Absolute node_modules root (overrides mountaineer.toml's node_modules_path)"`
		Environment      string `long:"environment" description:"process.env.NODE_ENV value (overrides mountaineer.toml's environment)"`
		LiveReloadPort   uint16 `long:"live-reload-port" description:"Live-reload websocket port (0 = none)"`
		LiveReloadImport string `long:"live-reload-import" description:"Import specifier for the live-reload mount"`
		IsServer         bool   `long:"server" description:"Bundle for server-side rendering instead of the client"`
		Tsconfig         string `long:"tsconfig" description:"Path to tsconfig.json"`
	} `command:"compile-independent" description:"Bundle each page group in isolation"`
}{
	Usage: `
mountaineer-core is the native build-and-render core of the SSR toolchain.

It provides these operations:
  - render-ssr:          Evaluate a compiled server bundle, returning rendered HTML
  - parse-mappings:      Decode a source map's mappings field
  - strip-comments:      Strip JS comments for content-hash stability
  - compile-production:  Bundle page groups together, preserving input order
  - compile-independent: Bundle each page group in isolation
`,
}

func readInput(pathOrDash string) ([]byte, error) {
	if pathOrDash == "" || pathOrDash == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(pathOrDash)
}

func writeJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func readGroups(path string) ([]orchestrate.PageGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw [][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	groups := make([]orchestrate.PageGroup, len(raw))
	for i, g := range raw {
		groups[i] = orchestrate.PageGroup(g)
	}
	return groups, nil
}

var subCommands = map[string]func() int{
	"render-ssr": func() int {
		source, err := readInput(opts.RenderSSR.Source)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		html, err := ssrengine.RenderBounded(string(source), opts.RenderSSR.HardTimeoutMS, ssrengine.DefaultWriter())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return writeJSON(map[string]string{"html": html})
	},
	"parse-mappings": func() int {
		raw, err := readInput(opts.ParseMappings.Mappings)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		mappings, err := sourcemap.ParseMappings(string(raw))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		type entry struct {
			Line, Column int32
			Metadata     sourcemap.MapMetadata
		}
		entries := make([]entry, 0, len(mappings))
		for pos, meta := range mappings {
			entries = append(entries, entry{Line: pos.Line, Column: pos.Column, Metadata: meta})
		}
		return writeJSON(entries)
	},
	"strip-comments": func() int {
		raw, err := readInput(opts.StripComments.Source)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		stripped := jslex.StripJSComments(string(raw), opts.StripComments.SkipWhitespace)
		return writeJSON(map[string]string{"stripped": stripped})
	},
	"compile-production": func() int {
		groups, err := readGroups(opts.CompileProduction.Groups)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		result, err := orchestrate.CompileProductionBundle(groups, orchestrate.ProductionConfig{
			NodeModulesPath:  opts.CompileProduction.NodeModulesPath,
			Environment:      opts.CompileProduction.Environment,
			Minify:           opts.CompileProduction.Minify,
			LiveReloadImport: opts.CompileProduction.LiveReloadImport,
			IsServer:         opts.CompileProduction.IsServer,
			TSConfigPath:     opts.CompileProduction.Tsconfig,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, describeBundlerError(err))
			return 1
		}
		return writeJSON(result)
	},
	"compile-independent": func() int {
		groups, err := readGroups(opts.CompileIndependent.Groups)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		scripts, maps, err := orchestrate.CompileIndependentBundles(groups, orchestrate.IndependentConfig{
			NodeModulesPath:  opts.CompileIndependent.NodeModulesPath,
			Environment:      opts.CompileIndependent.Environment,
			LiveReloadPort:   opts.CompileIndependent.LiveReloadPort,
			LiveReloadImport: opts.CompileIndependent.LiveReloadImport,
			IsServer:         opts.CompileIndependent.IsServer,
			TSConfigPath:     opts.CompileIndependent.Tsconfig,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, describeBundlerError(err))
			return 1
		}
		return writeJSON(map[string]interface{}{"scripts": scripts, "maps": maps})
	},
}

func describeBundlerError(err error) string {
	if be, ok := err.(*bundler.Error); ok {
		return be.Error()
	}
	return err.Error()
}

// loadProjectConfig reads mountaineer.toml (if present), pre-populates the
// flag-overridable fields from it, and feeds its log_level into mlog before
// the logger's first use — all ahead of flags.Parse so that any flag the
// caller actually passes wins over the file.
func loadProjectConfig() []string {
	fileCfg, warnings, err := config.Load(projectConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if os.Getenv("MOUNTAINEER_LOG_LEVEL") == "" && fileCfg.LogLevel != "" {
		os.Setenv("MOUNTAINEER_LOG_LEVEL", fileCfg.LogLevel)
	}

	opts.CompileProduction.NodeModulesPath = fileCfg.NodeModulesPath
	opts.CompileProduction.Environment = fileCfg.Environment
	// go-flags bool options are presence-only (no --minify=false), so a
	// config-enabled Minify can only be additionally confirmed by the flag,
	// never forced back off by it.
	opts.CompileProduction.Minify = fileCfg.Minify

	opts.CompileIndependent.NodeModulesPath = fileCfg.NodeModulesPath
	opts.CompileIndependent.Environment = fileCfg.Environment

	return warnings
}

func main() {
	warnings := loadProjectConfig()
	log := mlog.Log()
	for _, w := range warnings {
		log.WithField("source", projectConfigPath).Warn(w)
	}

	p := flags.NewParser(&opts, flags.Default)
	_, err := p.Parse()
	if err != nil {
		os.Exit(1)
	}
	if p.Active == nil {
		p.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	switch p.Active.Name {
	case "compile-production":
		if opts.CompileProduction.NodeModulesPath == "" {
			fmt.Fprintln(os.Stderr, "compile-production: --node-modules-path is required (set it on the command line or via mountaineer.toml's node_modules_path)")
			os.Exit(1)
		}
	case "compile-independent":
		if opts.CompileIndependent.NodeModulesPath == "" {
			fmt.Fprintln(os.Stderr, "compile-independent: --node-modules-path is required (set it on the command line or via mountaineer.toml's node_modules_path)")
			os.Exit(1)
		}
	}

	os.Exit(subCommands[p.Active.Name]())
}
