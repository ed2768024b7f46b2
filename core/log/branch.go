package log

import "context"

// depthKey carries the current branch-log indentation through a context,
// standing in for the thread-local call-depth counter the spec describes
// (Go has no true TLS; a context value scoped to the call chain is the
// idiomatic substitute).
type depthKey struct{}

func depthOf(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	if d, ok := ctx.Value(depthKey{}).(int); ok {
		return d
	}
	return 0
}

func withDepth(ctx context.Context, d int) context.Context {
	return context.WithValue(ctx, depthKey{}, d)
}

// Return is called once, on scope exit, to emit the matching "return" line
// for a Branch. It changes no context: the deeper depth exists only in
// the context Branch returned.
type Return func(err error)

// Branch emits a header line at the current indent and returns both a
// context carrying the incremented depth (for propagation into callees)
// and a Return guard that must be deferred to emit the closing line. This
// mirrors the original's pf::Log(name) constructor/destructor pair, which
// is exception-safe because Branch/Return never panic themselves.
//
//	ctx, done := log.Branch(ctx, l, "NewObject", log.String("class", name))
//	defer done(nil)
func Branch(ctx context.Context, l *Logger, name string, fields ...Field) (context.Context, Return) {
	depth := depthOf(ctx)
	l.log(depth, Detail, name+"()", fields...)
	next := withDepth(ctx, depth+1)
	return next, func(err error) {
		if err != nil {
			l.log(depth, Detail, name+"() <- ", Err(err))
		} else {
			l.log(depth, Detail, name+"() <-")
		}
	}
}
