package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"friend-chat/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHealthMonitoring_Reports_Samples(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().SnapshotOnline().Return([]string{"a", "b"}).AnyTimes()

	// Given a generous memory threshold
	reports := make(chan Health, 8)
	worker := NewHealthMonitoringWorker(logs.GetLoggerFromLevel(slog.LevelDebug), registry,
		10*time.Millisecond, 100, func(h Health) {
			select {
			case reports <- h:
			default:
			}
		})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then the process is reported serving with its connections
	select {
	case h := <-reports:
		req.True(h.Serving)
		req.Equal(2, h.Connections)
	case <-time.After(2 * time.Second):
		req.Fail("no health report")
	}

	cancel()
	req.ErrorIs(<-done, context.Canceled)
}

func TestHealthMonitoring_Not_Serving_Above_Threshold(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().SnapshotOnline().Return(nil).AnyTimes()

	// Given a threshold no running process can stay under
	reports := make(chan Health, 8)
	worker := NewHealthMonitoringWorker(logs.GetLoggerFromLevel(slog.LevelDebug), registry,
		10*time.Millisecond, 0, func(h Health) {
			select {
			case reports <- h:
			default:
			}
		})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	select {
	case h := <-reports:
		req.False(h.Serving)
	case <-time.After(2 * time.Second):
		req.Fail("no health report")
	}
}
