package ctxutil

import "context"

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

type runDataKey struct{}

// RunData identifies the pipeline run a context belongs to.
type RunData struct {
	RunID     string
	Trigger   string
	RequestID string
}

func WithRunData(ctx context.Context, rd *RunData) context.Context {
	return context.WithValue(Default(ctx), runDataKey{}, rd)
}

func GetRunData(ctx context.Context) *RunData {
	if ctx == nil {
		return nil
	}
	rd, _ := ctx.Value(runDataKey{}).(*RunData)
	return rd
}
