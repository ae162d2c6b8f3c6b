package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
)

// ReminderProcessor 扫描到期任务并标记为已提醒
type ReminderProcessor interface {
	ProcessReminders(ctx context.Context) ([]dto.TaskResponse, error)
}

// ReminderJob 任务提醒定时扫描
type ReminderJob struct {
	processor ReminderProcessor
	logger    *zap.Logger
	timeout   time.Duration
}

// NewReminderJob 创建 ReminderJob
func NewReminderJob(processor ReminderProcessor, logger *zap.Logger) *ReminderJob {
	return &ReminderJob{processor: processor, logger: logger, timeout: 30 * time.Second}
}

// Run 执行一次扫描，返回本次提醒的任务数
func (j *ReminderJob) Run(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	tasks, err := j.processor.ProcessReminders(ctx)
	if err != nil {
		j.logger.Error("任务提醒扫描失败", zap.Error(err))
		return 0
	}
	for _, t := range tasks {
		j.logger.Info("任务提醒",
			zap.String("task_id", t.ID),
			zap.String("teacher_id", t.TeacherID),
			zap.String("title", t.Title),
		)
	}
	return len(tasks)
}

// Start 按 spec 表达式注册并启动调度器；上一轮未结束时跳过本轮
func Start(spec string, j *ReminderJob, logger *zap.Logger) (*cron.Cron, error) {
	cl := zapCronLogger{logger: logger.Named("cron")}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))

	if _, err := c.AddFunc(spec, func() { j.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("注册提醒任务失败: %w", err)
	}
	c.Start()
	logger.Info("任务提醒调度已启动", zap.String("schedule", spec))
	return c, nil
}

// zapCronLogger 将 cron 内部日志转给 zap
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
