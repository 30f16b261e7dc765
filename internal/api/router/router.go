package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fiatimetable/config"
	"fiatimetable/internal/api/handler"
	"fiatimetable/internal/api/middleware"
	"fiatimetable/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不做限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 文件类接口共用的请求体与频率限制
	upload := []gin.HandlerFunc{
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
		middleware.RateLimit(rdb, cfg.Redis.RateLimit, time.Minute),
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学期模块
		terms := v1.Group("/terms")
		{
			terms.GET("", h.Term.ListTerms)
			terms.POST("", h.Term.CreateTerm)
			terms.PUT("/:name", h.Term.UpdateTerm)
			terms.DELETE("/:name", h.Term.DeleteTerm)
		}

		// 节次模块
		timeSlots := v1.Group("/time-slots")
		{
			timeSlots.GET("", h.TimeSlot.ListTimeSlots)
			timeSlots.POST("", h.TimeSlot.AppendTimeSlot)
			timeSlots.PUT("/:index", h.TimeSlot.UpdateTimeSlot)
			timeSlots.DELETE("/:index", h.TimeSlot.DeleteTimeSlot)
		}

		// 课表网格
		grid := v1.Group("/grid/:term")
		{
			grid.GET("", h.Course.GetGrid)
			grid.PUT("/:day/:slot", h.Course.SetCourse)
			grid.POST("/:day/:slot/append", h.Course.AppendCourse)
			grid.DELETE("/:day/:slot", h.Course.DeleteCourse)
			grid.GET("/:day/:slot/resolve", h.Course.ResolveCourse)
		}

		// 线上课程
		online := v1.Group("/online-courses/:term")
		{
			online.GET("", h.OnlineCourse.ListOnlineCourses)
			online.POST("", h.OnlineCourse.CreateOnlineCourse)
			online.PUT("/:id", h.OnlineCourse.UpdateOnlineCourse)
			online.DELETE("/:id", h.OnlineCourse.DeleteOnlineCourse)
		}

		// 视图
		views := v1.Group("/views")
		{
			views.GET("/day", h.View.GetDayView)
			views.GET("/week", h.View.GetWeekView)
			views.GET("/next", h.View.GetNextView)
			views.GET("/next/stream", h.View.StreamCountdown)
		}

		// 设置
		v1.GET("/settings", h.Settings.GetSettings)
		v1.PUT("/settings", h.Settings.UpdateSettings)

		// 备份模块
		backup := v1.Group("/backup")
		{
			backup.GET("/export", h.Backup.ExportBackup)
			backup.POST("/import", append(upload, h.Backup.ImportBackup)...)
			backup.POST("/cloud/upload", append(upload, h.Backup.UploadCloud)...)
			backup.POST("/cloud/download", append(upload, h.Backup.DownloadCloud)...)
			backup.GET("/cloud/history", h.Backup.CloudHistory)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/week.xlsx", h.Export.ExportWeek)
			export.GET("/term.ics", h.Export.ExportTerm)
		}

		// ICS 导入
		v1.POST("/import/ics/:term", append(upload, h.Calendar.ImportICS)...)
	}

	return r
}
