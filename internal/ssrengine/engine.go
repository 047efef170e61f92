// Package ssrengine embeds a V8 JavaScript engine to execute a compiled
// server-side bundle and produce an HTML string: install a console bridge,
// compile and run the bundle, enumerate the exported entry object's own
// methods, call each, and concatenate their string results.
package ssrengine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	v8 "rogchap.com/v8go"

	"github.com/piercefreeman/mountaineer/internal/mlog"
)

// entryGlobalName is the name the bundler orchestrator always binds the
// server bundle's exported object to.
const entryGlobalName = "SSR"

var logOnce sync.Once

func logFirstUse() {
	logOnce.Do(func() {
		// rogchap.com/v8go gates its own platform initialization behind an
		// internal sync.Once; this just records the first engine use.
		mlog.Log().WithField("component", "ssrengine").Debug("initializing embedded JS engine")
	})
}

// Stage tags which part of the V8 interaction produced an exception, so
// the wrapped error message always names the failing step.
type Stage string

const (
	// StageCompile is never produced: v8go's RunScript fuses compilation
	// and execution into one call, so a script that fails to parse surfaces
	// as StageExecute. Kept so the Stage taxonomy still names the failure
	// mode described distinctly elsewhere, even though this port can't
	// isolate it.
	StageCompile Stage = "Script compilation failed"
	StageExecute Stage = "Script execution failed"
	StageCall    Stage = "Error calling function"
)

// Exception is the V8Exception error variant: a JS-level failure with the
// failing stage, the engine's message, and its stack trace when available.
type Exception struct {
	Stage      Stage
	FuncName   string
	Message    string
	StackTrace string
}

func (e *Exception) Error() string {
	var b strings.Builder
	if e.Stage == StageCall {
		fmt.Fprintf(&b, "%s '%s': %s", e.Stage, e.FuncName, e.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s", e.Stage, e.Message)
	}
	if e.StackTrace != "" {
		b.WriteString("\n")
		b.WriteString(e.StackTrace)
	}
	return b.String()
}

func wrapJSError(stage Stage, funcName string, err error) *Exception {
	if jsErr, ok := err.(*v8.JSError); ok {
		return &Exception{Stage: stage, FuncName: funcName, Message: jsErr.Message, StackTrace: jsErr.StackTrace}
	}
	return &Exception{Stage: stage, FuncName: funcName, Message: err.Error()}
}

// Render evaluates a compiled server bundle and calls every exported
// method on its entry object, concatenating their string returns. writer
// receives anything the bundle writes via console.log/warn/info/debug/error;
// pass nil to discard.
func Render(source string, writer io.Writer) (string, error) {
	callID := uuid.NewString()
	mlog.Log().WithFields(map[string]interface{}{
		"component": "ssrengine",
		"call_id":   callID,
	}).Debug("starting SSR call")

	_, ctx, dispose, err := newIsolate(writer)
	defer dispose()
	if err != nil {
		return "", err
	}
	return runInContext(ctx, source)
}

// newIsolate creates an isolate with the console bridge and a context
// installed, returning a dispose func the caller must invoke exactly once.
// Split out from Render so the bounded driver (bounded.go) can obtain the
// isolate before spawning the worker goroutine, to wire TerminateExecution
// as a real cancel hook.
func newIsolate(writer io.Writer) (*v8.Isolate, *v8.Context, func(), error) {
	logFirstUse()

	iso := v8.NewIsolate()
	global := v8.NewObjectTemplate(iso)
	if err := installConsole(iso, global, writer); err != nil {
		iso.Dispose()
		return nil, nil, func() {}, err
	}
	ctx := v8.NewContext(iso, global)

	dispose := func() {
		ctx.Close()
		iso.Dispose()
	}
	return iso, ctx, dispose, nil
}

func runInContext(ctx *v8.Context, source string) (string, error) {
	script := source + ";" + entryGlobalName
	entryVal, err := ctx.RunScript(script, "ssr-entry")
	if err != nil {
		return "", wrapJSError(StageExecute, "", err)
	}
	if !entryVal.IsObject() {
		return "", &Exception{Stage: StageExecute, Message: fmt.Sprintf("entry %q did not evaluate to an object", entryGlobalName)}
	}

	names, err := ownPropertyNames(ctx, entryGlobalName)
	if err != nil {
		return "", wrapJSError(StageExecute, "", err)
	}

	var out strings.Builder
	for _, name := range names {
		callScript := fmt.Sprintf("%s[%s](undefined)", entryGlobalName, jsStringLiteral(name))
		result, err := ctx.RunScript(callScript, "ssr-call-"+name)
		if err != nil {
			return "", wrapJSError(StageCall, name, err)
		}
		out.WriteString(result.String())
	}

	return out.String(), nil
}

// ownPropertyNames enumerates the own, enumerable property names of the
// named global via a JSON round trip (Object.keys + JSONStringify), staying
// within the confirmed v8go API surface rather than relying on an
// unconfirmed native enumeration method.
func ownPropertyNames(ctx *v8.Context, globalName string) ([]string, error) {
	val, err := ctx.RunScript(fmt.Sprintf("Object.keys(%s)", globalName), "ssr-enumerate")
	if err != nil {
		return nil, err
	}
	jsonStr, err := v8.JSONStringify(ctx, val)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(jsonStr), &names); err != nil {
		return nil, err
	}
	return names, nil
}

func jsStringLiteral(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func installConsole(iso *v8.Isolate, global *v8.ObjectTemplate, writer io.Writer) error {
	if writer == nil {
		writer = io.Discard
	}

	console := v8.NewObjectTemplate(iso)
	for _, level := range []string{"log", "warn", "info", "debug", "error"} {
		level := level
		fn := v8.NewFunctionTemplate(iso, func(info *v8.FunctionCallbackInfo) *v8.Value {
			var parts []string
			for _, arg := range info.Args() {
				parts = append(parts, arg.String())
			}
			fmt.Fprintf(writer, "[%s] %s\n", level, strings.Join(parts, " "))
			return v8.Undefined(info.Context().Isolate())
		})
		if err := console.Set(level, fn, v8.ReadOnly); err != nil {
			return fmt.Errorf("ssrengine: install console.%s: %w", level, err)
		}
	}
	return global.Set("console", console, v8.ReadOnly)
}

// DefaultWriter returns the host writer used when the caller does not
// supply one — stderr, matching where bundler/engine diagnostics go.
func DefaultWriter() io.Writer { return os.Stderr }
