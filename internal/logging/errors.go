package logging

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/oops"
)

// LogError logs err at error level, expanding the oops code and context
// attached along the wrap chain.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs = append(attrs, slog.String("error", err.Error()))

	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, slog.String("code", fmt.Sprint(code)))
		}
		fields := oopsErr.Context()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, slog.Any(k, fields[k]))
		}
	}

	logger.ErrorContext(ctx, msg, attrs...)
}
