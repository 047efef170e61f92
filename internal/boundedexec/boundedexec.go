// Package boundedexec runs a task on a worker goroutine and returns its
// result, or abandons it once a deadline passes. Go cannot forcibly cancel
// a goroutine the way POSIX thread-cancel or Windows TerminateThread can;
// this is the idiomatic substitute — on timeout, an optional cancel hook is
// invoked to ask the task to unwind itself, and the worker is abandoned
// (its result, if it ever arrives, is discarded) rather than joined.
package boundedexec

import "time"

// Run executes task on a new goroutine. A timeout of 0 (or less) means no
// bound: task then runs inline on the calling goroutine and its result is
// returned directly, as it is when the worker completes before timeout. On
// timeout, cancel (if non-nil) is invoked to request the task stop, and
// Run returns ok=false immediately without waiting further for the worker.
func Run[R any](task func() (R, error), timeout time.Duration, cancel func()) (result R, err error, ok bool) {
	if timeout <= 0 {
		r, e := task()
		return r, e, true
	}

	type outcome struct {
		val R
		err error
	}
	resultCh := make(chan outcome, 1)

	go func() {
		v, e := task()
		resultCh <- outcome{val: v, err: e}
	}()

	select {
	case o := <-resultCh:
		return o.val, o.err, true
	case <-time.After(timeout):
		if cancel != nil {
			cancel()
		}
		var zero R
		return zero, nil, false
	}
}
