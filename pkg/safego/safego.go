// Package safego launches goroutines with panic recovery.
package safego

import (
	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

// Go runs fn in a goroutine. A panic is logged and the goroutine exits
// cleanly instead of crashing the process.
func Go(log *logger.Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("goroutine panicked",
					zap.String("goroutine", name),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
			}
		}()
		fn()
	}()
}
