package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// QueryObserver receives the outcome of every query run through the pool.
type QueryObserver interface {
	QueryFinished(query string, elapsed time.Duration, err error)
}

type queryTracer struct {
	observer QueryObserver
}

var _ pgx.QueryTracer = (*queryTracer)(nil)

type queryContextKey struct{}

type queryContext struct {
	start time.Time
	name  string
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{start: time.Now(), name: queryName(data.SQL)})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}
	t.observer.QueryFinished(qctx.name, time.Since(qctx.start), data.Err)
}

// queryName reduces a statement to its leading verb to keep label cardinality low.
func queryName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToUpper(fields[0])
}
