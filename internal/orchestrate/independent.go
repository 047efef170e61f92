package orchestrate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/piercefreeman/mountaineer/internal/bundler"
	"github.com/piercefreeman/mountaineer/internal/codegen"
)

// IndependentConfig carries the independent orchestrator's per-call inputs.
// LiveReloadPort of 0 means absent (the external contract's -1 sentinel is
// the host binding's concern, not this package's).
type IndependentConfig struct {
	NodeModulesPath  string
	Environment      string
	LiveReloadPort   uint16
	LiveReloadImport string
	IsServer         bool
	TSConfigPath     string
}

const independentEntryName = "entrypoint"

// CompileIndependentBundles bundles each group in total isolation: its own
// scoped temp directory and its own bundler.Run call, so one group's
// resolution or define context can never leak into another's. SingleServer
// output is validated against the bundler's IIFE preamble and rewrapped as
// a named "SSR" global, since the bundler has no global-name option of its
// own.
func CompileIndependentBundles(groups []PageGroup, cfg IndependentConfig) (scripts []string, maps []string, err error) {
	if len(groups) == 0 {
		return nil, nil, &bundler.Error{Kind: bundler.ErrInvalidInput, Detail: "compile_independent_bundles requires at least one page group"}
	}

	scripts = make([]string, len(groups))
	maps = make([]string, len(groups))

	mode := bundler.SingleClient
	if cfg.IsServer {
		mode = bundler.SingleServer
	}

	for i, group := range groups {
		for _, p := range group {
			if !filepath.IsAbs(p) {
				return nil, nil, &bundler.Error{Kind: bundler.ErrInvalidInput, Detail: "every module path in a page group must be absolute"}
			}
		}

		tempDir, mkErr := os.MkdirTemp("", "mountaineer-indep-*")
		if mkErr != nil {
			return nil, nil, &bundler.Error{Kind: bundler.ErrIO, Detail: "failed to create scoped temp directory for entrypoint", Err: mkErr}
		}

		entryPath := filepath.Join(tempDir, independentEntryName+".jsx")
		content := codegen.BuildEntrypoint([]string(group), cfg.IsServer, cfg.LiveReloadImport)
		if writeErr := os.WriteFile(entryPath, []byte(content), 0o644); writeErr != nil {
			os.RemoveAll(tempDir)
			return nil, nil, &bundler.Error{Kind: bundler.ErrIO, Detail: "failed to write synthesized entrypoint", Err: writeErr}
		}

		results, runErr := bundler.Run(bundler.Config{
			Entries:         []string{entryPath},
			Mode:            mode,
			Environment:     cfg.Environment,
			NodeModulesPath: cfg.NodeModulesPath,
			LiveReloadPort:  cfg.LiveReloadPort,
			TSConfigPath:    cfg.TSConfigPath,
		})
		os.RemoveAll(tempDir)
		if runErr != nil {
			return nil, nil, runErr
		}

		result, ok := results.Entrypoints[independentEntryName]
		if !ok {
			return nil, nil, &bundler.Error{Kind: bundler.ErrOutput, Detail: "expected independent entrypoint was not produced"}
		}

		script := result.Script
		if cfg.IsServer {
			wrapped, wrapErr := wrapAsSSRGlobal(script)
			if wrapErr != nil {
				return nil, nil, wrapErr
			}
			script = wrapped
		}

		scripts[i] = script
		if result.HasMap {
			maps[i] = result.Map
		}
	}

	return scripts, maps, nil
}

// wrapAsSSRGlobal binds a server bundle's IIFE output to the "SSR" global
// the SSR engine expects. The bundler emits `(function(...){...})()` with
// no option to name the result; the preamble check is deliberately brittle
// so a bundler output-shape change surfaces loudly instead of silently
// producing an unbound script.
func wrapAsSSRGlobal(script string) (string, error) {
	const preamble = "(function("
	if !strings.HasPrefix(script, preamble) {
		head := firstRunes(script, 50)
		tail := lastRunes(script, 50)
		return "", &bundler.Error{Kind: bundler.ErrOutput, Detail: "compiled bundle does not match expected IIFE format: (function(...){...})()\n\nBeginning 50 chars: " + head + "\nEnding 50 chars: " + tail}
	}
	return "var SSR = (() => {\nreturn " + script + "\n})();", nil
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[len(r)-n:])
}
