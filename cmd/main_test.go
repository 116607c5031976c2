package main

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"friend-chat/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStartOrchestrator_Stop_Waits_For_Start_To_Return(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)

	// Given an orchestrator whose workers take a while to drain after cancellation
	var finished atomic.Bool
	orchestrator.EXPECT().Start(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	})
	orchestrator.EXPECT().Stop().Times(1)

	errChan := make(chan error, 1)
	stop, done := startOrchestrator(context.Background(), logs.GetLoggerFromLevel(slog.LevelDebug), orchestrator, errChan)

	// When it is stopped, twice
	stop()
	stop()

	// Then stop only returned once Start was over, and cancellation is not an error
	req.True(finished.Load())
	select {
	case <-done:
	default:
		req.Fail("orchestrator still running")
	}
	req.Empty(errChan)
}
