package bundler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"

	"github.com/piercefreeman/mountaineer/internal/mlog"
)

// Loaders maps file extensions to esbuild loaders, matching the set a
// React/TS front end needs.
var Loaders = map[string]api.Loader{
	".js":   api.LoaderJS,
	".jsx":  api.LoaderJSX,
	".ts":   api.LoaderTS,
	".tsx":  api.LoaderTSX,
	".json": api.LoaderJSON,
	".css":  api.LoaderCSS,
	".mjs":  api.LoaderJS,
	".cjs":  api.LoaderJS,
}

// Run executes one bundle pass per cfg.Mode and returns the classified
// results, or a tagged Error.
func Run(cfg Config) (*Results, error) {
	log := mlog.Log().WithFields(map[string]interface{}{
		"component": "bundler",
		"pass_id":   uuid.NewString(),
	})

	if err := validate(cfg); err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp("", "mountaineer-bundle-*")
	if err != nil {
		return nil, ioErr(err, "failed to create scoped temp output directory")
	}
	defer os.RemoveAll(outDir)

	outfile, outdir := outputLayout(cfg, outDir)

	defines := composeDefines(cfg)

	format := api.FormatESModule
	if cfg.Mode == SingleServer {
		format = api.FormatIIFE
	}

	buildOpts := api.BuildOptions{
		EntryPoints:       cfg.Entries,
		Outfile:           outfile,
		Outdir:            outdir,
		Bundle:            true,
		Write:             true,
		Format:            format,
		Platform:          api.PlatformBrowser,
		Target:            api.ESNext,
		LogLevel:          api.LogLevelSilent,
		NodePaths:         []string{cfg.NodeModulesPath},
		Loader:            Loaders,
		Define:            defines,
		Sourcemap:         api.SourceMapExternal,
		MinifyWhitespace:  cfg.Minify,
		MinifyIdentifiers: cfg.Minify,
		MinifySyntax:      cfg.Minify,
	}
	if cfg.TSConfigPath != "" {
		buildOpts.Tsconfig = cfg.TSConfigPath
	}
	if cfg.Mode == MultiClient {
		buildOpts.Splitting = true
		buildOpts.Format = api.FormatESModule
	}
	if cfg.Mode == SingleClient {
		// A single-file ESM entry can't hold a separate split chunk for a
		// dynamic import(), so fold any dynamic imports inline rather than
		// let esbuild fail the build over them.
		buildOpts.InlineDynamicImports = true
	}

	log.WithField("mode", cfg.Mode.String()).Debug("running esbuild")
	result := api.Build(buildOpts)

	if len(result.Errors) > 0 {
		var msgs []string
		for _, e := range result.Errors {
			msgs = append(msgs, e.Text)
		}
		return nil, bundlingErr(strings.Join(msgs, "; "))
	}

	return classify(outDir, cfg.Entries)
}

func validate(cfg Config) error {
	if len(cfg.Entries) == 0 {
		return invalidInputErr("bundle requires at least one entry")
	}
	if (cfg.Mode == SingleClient || cfg.Mode == SingleServer) && len(cfg.Entries) != 1 {
		return invalidInputErr(fmt.Sprintf("mode %s requires exactly one entry, got %d", cfg.Mode, len(cfg.Entries)))
	}
	for _, entry := range cfg.Entries {
		if !filepath.IsAbs(entry) {
			return invalidInputErr(fmt.Sprintf("entry path %q must be absolute", entry))
		}
		if _, err := os.Stat(entry); err != nil {
			return fileNotFoundErr(entry)
		}
	}
	if cfg.TSConfigPath != "" {
		if _, err := os.Stat(cfg.TSConfigPath); err != nil {
			return fileNotFoundErr(cfg.TSConfigPath)
		}
	}
	return nil
}

func outputLayout(cfg Config, tempDir string) (outfile, outdir string) {
	if cfg.Mode == MultiClient {
		return "", tempDir
	}
	stem := stemOf(cfg.Entries[0])
	return filepath.Join(tempDir, stem+".js"), ""
}

func composeDefines(cfg Config) map[string]string {
	port := int(cfg.LiveReloadPort)
	ssr := "false"
	if cfg.Mode == SingleServer {
		ssr = "true"
	}
	defines := map[string]string{
		"process.env.NODE_ENV":         fmt.Sprintf(`"%s"`, cfg.Environment),
		"process.env.LIVE_RELOAD_PORT": fmt.Sprintf("%d", port),
		"process.env.SSR_RENDERING":    fmt.Sprintf(`"%s"`, ssr),
	}
	if cfg.Mode == SingleServer {
		defines["global"] = "window"
	}
	return defines
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func classify(outDir string, entries []string) (*Results, error) {
	stems := make(map[string]bool, len(entries))
	for _, e := range entries {
		stems[stemOf(e)] = true
	}

	entries2 := make(map[string]Result)
	extras := make(map[string]Result)

	walkErr := filepath.Walk(outDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".js" {
			return nil
		}

		script, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		result := Result{Script: string(script)}
		mapPath := path + ".map"
		if mapContents, err := os.ReadFile(mapPath); err == nil {
			result.Map = string(mapContents)
			result.HasMap = true
		}

		stem := stemOf(path)
		if stems[stem] {
			entries2[stem] = result
		} else {
			extras[filepath.Base(path)] = result
		}
		return nil
	})
	if walkErr != nil {
		return nil, ioErr(walkErr, "walking bundle output directory")
	}

	for stem := range stems {
		if _, ok := entries2[stem]; !ok {
			return nil, outputErr(fmt.Sprintf("expected entrypoint %q was not produced", stem))
		}
	}

	return &Results{Entrypoints: entries2, Extras: extras}, nil
}
