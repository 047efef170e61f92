package ssrengine

import (
	"io"
	"time"

	"github.com/piercefreeman/mountaineer/internal/boundedexec"
	"github.com/piercefreeman/mountaineer/internal/mlog"
)

// HardTimeout is returned by RenderBounded when the deadline is reached
// before the engine produces a result.
type HardTimeout struct {
	Timeout time.Duration
}

func (e *HardTimeout) Error() string {
	return "render_ssr timed out after " + e.Timeout.String()
}

// RenderBounded runs Render with a hard wall-clock deadline. hardTimeoutMS
// of 0 means no bound — the call runs inline on the calling goroutine. A
// positive value runs the render on a worker and terminates the isolate's
// execution if the deadline passes; the worker goroutine is then abandoned
// (the same accepted leak boundedexec.Run documents), not joined. The
// isolate is created up front so its TerminateExecution can serve as the
// cancel hook, and is disposed inside the worker itself once RunScript
// actually unblocks, whether that's from completion or termination.
func RenderBounded(source string, hardTimeoutMS int, writer io.Writer) (string, error) {
	if hardTimeoutMS <= 0 {
		return Render(source, writer)
	}

	timeout := time.Duration(hardTimeoutMS) * time.Millisecond
	log := mlog.Log().WithField("component", "ssrengine")

	iso, ctx, dispose, err := newIsolate(writer)
	if err != nil {
		return "", err
	}

	result, err, ok := boundedexec.Run(func() (string, error) {
		defer dispose()
		return runInContext(ctx, source)
	}, timeout, iso.TerminateExecution)

	if !ok {
		log.WithField("timeout_ms", hardTimeoutMS).Warn("render_ssr hit hard timeout, abandoning isolate")
		return "", &HardTimeout{Timeout: timeout}
	}
	return result, err
}
