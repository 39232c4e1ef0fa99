// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reconn

import (
	"context"
	"errors"
	"time"

	"github.com/gogama/reconn/request"
	"github.com/gogama/reconn/retry"
	"github.com/gogama/reconn/transient"
	"github.com/gogama/reconn/transport"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// An executor runs one logical request at a time per call: it sends the
// request on the current connection and, on a transport failure the
// retry policy accepts, rebuilds the connection and sends the same
// request again.
type executor struct {
	conns    *connManager
	policy   retry.Policy
	timeout  time.Duration
	limiter  *rate.Limiter
	handlers *HandlerGroup
	logger   *zap.Logger
}

type sendResult struct {
	resp *request.Response
	err  error
}

func (x *executor) execute(ctx context.Context, r *request.Request) (*request.Execution, error) {
	e := &request.Execution{Request: r}
	x.handlers.run(BeforeExecutionStart, e)
	e.Start = time.Now()

	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	for {
		conn, gen, err := x.conns.current()
		if err != nil {
			e.Err = err
			break
		}
		if ctx.Err() != nil {
			x.fail(ctx, e, ctx.Err())
			break
		}

		if x.limiter != nil {
			if err = x.limiter.Wait(ctx); err != nil {
				x.fail(ctx, e, err)
				break
			}
		}

		e.Response = nil
		e.Err = nil
		x.handlers.run(BeforeAttempt, e)
		e.Response, e.Err = x.send(ctx, conn, r)
		if e.Err != nil && transient.Categorize(e.Err) == transient.Timeout && ctx.Err() == nil {
			x.handlers.run(AfterAttemptTimeout, e)
		}
		x.handlers.run(AfterAttempt, e)

		if e.Err == nil {
			e.Response.Duration = time.Since(e.Start)
			break
		}
		if ctx.Err() != nil {
			x.fail(ctx, e, e.Err)
			break
		}
		if !transient.IsTransport(e.Err) {
			break
		}

		category := transient.Categorize(e.Err)
		if !x.policy.Decide(e) {
			x.logger.Warn("retries exhausted",
				zap.Stringer("request", r),
				zap.Int("attempts", e.Attempts()),
				zap.Stringer("category", category),
				zap.Error(e.Err))
			e.Err = &ConnectionError{Attempts: e.Attempts(), Elapsed: time.Since(e.Start), Err: e.Err}
			break
		}
		x.logger.Debug("attempt failed, rebuilding connection",
			zap.Stringer("request", r),
			zap.Int("attempt", e.Attempt),
			zap.Stringer("category", category),
			zap.Error(e.Err))

		if !x.wait(ctx, e) {
			break
		}

		x.handlers.run(BeforeRebuild, e)
		if err = x.conns.rebuild(gen); err != nil {
			var connErr *ConnectionError
			if errors.As(err, &connErr) {
				connErr.Attempts = e.Attempts()
				connErr.Elapsed = time.Since(e.Start)
			}
			x.logger.Warn("connection rebuild failed", zap.Stringer("request", r), zap.Error(err))
			e.Err = err
			break
		}
		e.Rebuilds++
		x.logger.Info("connection rebuilt", zap.Int("rebuilds", e.Rebuilds))
		if ctx.Err() != nil {
			x.fail(ctx, e, ctx.Err())
			break
		}
		e.Attempt++
	}

	if e.Err != nil {
		e.Response = nil
	}
	e.End = time.Now()
	x.handlers.run(AfterExecutionEnd, e)
	return e, e.Err
}

// send sends r on conn, giving up when ctx is done. If conn does not
// honor ctx, the abandoned send completes in the background and its
// result is discarded.
func (x *executor) send(ctx context.Context, conn transport.Conn, r *request.Request) (*request.Response, error) {
	ch := make(chan sendResult, 1)
	go func() {
		resp, err := conn.Send(ctx, r)
		ch <- sendResult{resp, err}
	}()

	select {
	case res := <-ch:
		if res.err == nil && res.resp == nil {
			return nil, errors.New("reconn: transport returned neither response nor error")
		}
		if res.err == nil && res.resp.Body == nil {
			res.resp.Body = []byte{}
		}
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// wait sleeps for the retry wait, returning false if ctx ended first.
func (x *executor) wait(ctx context.Context, e *request.Execution) bool {
	d := x.policy.Wait(e)
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		x.fail(ctx, e, ctx.Err())
		return false
	}
}

// fail records the end of an execution whose context is done, or whose
// rate limiter wait could not complete before the deadline.
func (x *executor) fail(ctx context.Context, e *request.Execution, cause error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		e.Err = ctx.Err()
		return
	}
	e.Err = &RequestTimeoutError{
		Limit:    x.timeout,
		Elapsed:  time.Since(e.Start),
		Attempts: e.Attempts(),
		Err:      cause,
	}
	x.logger.Debug("request timed out", zap.Stringer("request", e.Request), zap.Error(e.Err))
	x.handlers.run(AfterRequestTimeout, e)
}
