package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/config"
	"github.com/xszhu002/ke-cheng-biao/internal/api/handler"
	"github.com/xszhu002/ke-cheng-biao/internal/api/middleware"
	"github.com/xszhu002/ke-cheng-biao/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎；rdb 可为 nil（不限流）
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger))
	{
		// 教师
		teachers := v1.Group("/teachers")
		{
			teachers.GET("", h.Teacher.ListTeachers)
			teachers.POST("", h.Teacher.CreateTeacher)
			teachers.GET("/:id", h.Teacher.GetTeacher)
			teachers.PUT("/:id", h.Teacher.UpdateTeacher)
			teachers.DELETE("/:id", h.Teacher.DeleteTeacher)
		}

		// 学期
		semesters := v1.Group("/semesters")
		{
			semesters.GET("/current", h.Semester.GetCurrentSemester)
			semesters.POST("", h.Semester.CreateSemester)
		}

		// 课表：原始/工作两代、周视图、历史、导入导出
		schedules := v1.Group("/schedules")
		{
			schedules.GET("/teacher/:teacherId", h.Schedule.GetTeacherSchedule)
			schedules.POST("", h.Schedule.CreateSchedule)
			schedules.POST("/:id/save-original", h.Schedule.SaveOriginal)
			schedules.POST("/:id/reset", h.Schedule.ResetSchedule)
			schedules.GET("/:id/original", h.Schedule.GetOriginal)
			schedules.GET("/:id/week/:week", h.Schedule.GetWeek)
			schedules.GET("/:id/history", h.Schedule.ListHistory)
			schedules.GET("/:id/export/week/:week", h.Export.ExportWeekExcel)
			schedules.GET("/:id/export/week/:week/ics", h.Export.ExportWeekICS)
			schedules.POST("/:id/import/ics", h.Schedule.ImportICS)
		}

		// 常规课
		courses := v1.Group("/courses")
		{
			courses.POST("", h.Course.CreateCourse)
			courses.PUT("/:id/move", h.Course.MoveCourse)
			courses.PUT("/:id", h.Course.UpdateCourse)
			courses.DELETE("/:id", h.Course.DeleteCourse)
		}

		// 晚托
		specialCare := v1.Group("/special-care")
		{
			specialCare.POST("", h.Course.CreateSpecialCare)
			specialCare.GET("/schedule/:scheduleId", h.Course.ListSpecialCare)
			specialCare.PUT("/:id", h.Course.UpdateSpecialCare)
			specialCare.DELETE("/:id", h.Course.DeleteSpecialCare)
		}

		// 任务
		tasks := v1.Group("/tasks")
		{
			tasks.GET("/course/:scheduleId/:weekday/:timeSlot", h.Task.ListCellTasks)
			tasks.GET("/teacher/:teacherId", h.Task.ListTeacherTasks)
			tasks.GET("/teacher/:teacherId/stats", h.Task.GetTeacherStats)
			tasks.GET("/teacher/:teacherId/reminders", h.Task.ListReminders)
			tasks.POST("", h.Task.CreateTask)
			tasks.PUT("/:id", h.Task.UpdateTask)
			tasks.POST("/:id/complete", h.Task.CompleteTask)
			tasks.DELETE("/:id", h.Task.DeleteTask)
		}

		// 周备注
		notes := v1.Group("/weekly-notes")
		{
			notes.GET("/:teacherId/:scheduleId/:year/:week", h.WeeklyNote.GetNote)
			notes.POST("", h.WeeklyNote.UpsertNote)
		}
	}

	return r
}
