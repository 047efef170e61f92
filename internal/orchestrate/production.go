// Package orchestrate sits above the bundler driver: it synthesizes entry
// wrappers for one or more page groups, invokes the bundler in the right
// mode, and reshapes the classified output to the two call shapes the host
// needs — order-preserving production bundles and isolated per-group
// independent bundles.
package orchestrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piercefreeman/mountaineer/internal/bundler"
	"github.com/piercefreeman/mountaineer/internal/codegen"
)

// PageGroup is an ordered chain of absolute module paths, outermost layout
// first and innermost view last.
type PageGroup []string

// ProductionConfig carries the production orchestrator's per-call inputs.
type ProductionConfig struct {
	NodeModulesPath  string
	Environment      string
	Minify           bool
	LiveReloadImport string
	IsServer         bool
	TSConfigPath     string
}

// ProductionResult mirrors compile_production_bundle's external shape: two
// parallel ordered lists for the page groups' own entry output, plus two
// maps for chunks shared across groups.
type ProductionResult struct {
	Entrypoints    []string
	EntrypointMaps []string
	Supporting     map[string]string
	SupportingMaps map[string]string
}

// CompileProductionBundle writes one synthesized wrapper per group into a
// scoped temp directory, bundles them together in a single multi-client (or
// single-server) pass, and re-keys the results back into groups' input
// order — the i-th returned entry always corresponds to groups[i].
func CompileProductionBundle(groups []PageGroup, cfg ProductionConfig) (*ProductionResult, error) {
	if len(groups) == 0 {
		return nil, &bundler.Error{Kind: bundler.ErrInvalidInput, Detail: "compile_production_bundle requires at least one page group"}
	}

	tempDir, err := os.MkdirTemp("", "mountaineer-prod-*")
	if err != nil {
		return nil, &bundler.Error{Kind: bundler.ErrIO, Detail: "failed to create scoped temp directory for entrypoints", Err: err}
	}
	defer os.RemoveAll(tempDir)

	stems := make([]string, len(groups))
	entries := make([]string, len(groups))
	for i, group := range groups {
		for _, p := range group {
			if !filepath.IsAbs(p) {
				return nil, &bundler.Error{Kind: bundler.ErrInvalidInput, Detail: "every module path in a page group must be absolute"}
			}
		}
		stem := fmt.Sprintf("entrypoint%d", i)
		stems[i] = stem
		path := filepath.Join(tempDir, stem+".jsx")
		content := codegen.BuildEntrypoint([]string(group), cfg.IsServer, cfg.LiveReloadImport)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, &bundler.Error{Kind: bundler.ErrIO, Detail: "failed to write synthesized entrypoint", Err: err}
		}
		entries[i] = path
	}

	mode := bundler.MultiClient
	if cfg.IsServer {
		mode = bundler.SingleServer
	}

	results, err := bundler.Run(bundler.Config{
		Entries:         entries,
		Mode:            mode,
		Environment:     cfg.Environment,
		NodeModulesPath: cfg.NodeModulesPath,
		TSConfigPath:    cfg.TSConfigPath,
		Minify:          cfg.Minify,
	})
	if err != nil {
		return nil, err
	}

	out := &ProductionResult{
		Entrypoints:    make([]string, len(groups)),
		EntrypointMaps: make([]string, len(groups)),
		Supporting:     make(map[string]string),
		SupportingMaps: make(map[string]string),
	}
	for i, stem := range stems {
		r, ok := results.Entrypoints[stem]
		if !ok {
			return nil, &bundler.Error{Kind: bundler.ErrOutput, Detail: fmt.Sprintf("expected entrypoint %q for page group %d was not produced", stem, i)}
		}
		out.Entrypoints[i] = r.Script
		if r.HasMap {
			out.EntrypointMaps[i] = r.Map
		}
	}
	for name, r := range results.Extras {
		out.Supporting[name] = r.Script
		if r.HasMap {
			mapName := strings.TrimSuffix(name, filepath.Ext(name)) + ".js.map"
			out.SupportingMaps[mapName] = r.Map
		}
	}

	return out, nil
}
