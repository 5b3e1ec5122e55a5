package app

import (
	"go.uber.org/zap"

	"github.com/feiralivre/fulfillment/internal/logx"
)

// NewLogger builds the process-wide structured logger.
func NewLogger() logx.Logger {
	base, err := zap.NewProduction()
	if err != nil {
		return logx.Nop()
	}
	return logx.NewZapAdapter(base)
}
