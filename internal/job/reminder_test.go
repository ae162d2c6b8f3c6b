package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
)

type fakeProcessor struct {
	calls atomic.Int32
	tasks []dto.TaskResponse
	err   error
}

func (f *fakeProcessor) ProcessReminders(ctx context.Context) ([]dto.TaskResponse, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("缺少超时")
	}
	return f.tasks, f.err
}

func TestRun_LogsEachTask(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &fakeProcessor{tasks: []dto.TaskResponse{
		{ID: "t1", TeacherID: "w", Title: "批改作业"},
		{ID: "t2", TeacherID: "w", Title: "家长会"},
	}}

	n := NewReminderJob(p, zap.New(core)).Run(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, logs.FilterMessage("任务提醒").Len())
}

func TestRun_ErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &fakeProcessor{err: errors.New("db down")}

	n := NewReminderJob(p, zap.New(core)).Run(context.Background())

	assert.Equal(t, 0, n)
	assert.Equal(t, 1, logs.FilterMessage("任务提醒扫描失败").Len())
}

func TestStart_InvalidSpec(t *testing.T) {
	_, err := Start("every now and then", NewReminderJob(&fakeProcessor{}, zap.NewNop()), zap.NewNop())
	assert.Error(t, err)
}

func TestStart_Schedules(t *testing.T) {
	p := &fakeProcessor{}
	c, err := Start("@every 1s", NewReminderJob(p, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()

	assert.Eventually(t, func() bool { return p.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
