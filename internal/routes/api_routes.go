// stm-dashboard/internal/routes/api_routes.go
package routes

import (
	"github.com/riajulpro/stm-dashboard/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers all authenticated API routes under /api.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		batches := apiGroup.Group("/batches")
		{
			batches.GET("", handlers.ListBatchesHandler)
			batches.POST("", handlers.CreateBatchHandler)
			batches.GET("/:id", handlers.GetBatchHandler)
			batches.PUT("/:id", handlers.UpdateBatchHandler)
			batches.PATCH("/:id", handlers.UpdateBatchHandler)
			batches.DELETE("/:id", handlers.DeleteBatchHandler)
		}

		students := apiGroup.Group("/students")
		{
			students.GET("", handlers.ListStudentsHandler)
			students.POST("", handlers.CreateStudentHandler)
			students.POST("/preview-id", handlers.PreviewStudentIDHandler)
			students.GET("/export", handlers.ExportStudentsHandler)
			students.GET("/:id", handlers.GetStudentHandler)
			students.PUT("/:id", handlers.UpdateStudentHandler)
			students.PATCH("/:id", handlers.UpdateStudentHandler)
			students.DELETE("/:id", handlers.DeleteStudentHandler)
			students.POST("/:id/avatar", handlers.UploadStudentAvatarHandler)
		}

		courses := apiGroup.Group("/courses")
		{
			courses.GET("", handlers.ListCoursesHandler)
			courses.POST("", handlers.CreateCourseHandler)
			courses.GET("/:id", handlers.GetCourseHandler)
			courses.PUT("/:id", handlers.UpdateCourseHandler)
			courses.PATCH("/:id", handlers.UpdateCourseHandler)
			courses.DELETE("/:id", handlers.DeleteCourseHandler)
		}

		attendances := apiGroup.Group("/attendances")
		{
			attendances.GET("", handlers.ListAttendancesHandler)
			attendances.POST("", handlers.CreateAttendanceHandler)
			attendances.POST("/bulk", handlers.BulkAttendanceHandler)
			attendances.PUT("/:id", handlers.UpdateAttendanceHandler)
			attendances.PATCH("/:id", handlers.PatchAttendanceHandler)
			attendances.DELETE("/:id", handlers.DeleteAttendanceHandler)
		}

		routines := apiGroup.Group("/routines")
		{
			routines.GET("", handlers.ListRoutinesHandler)
			routines.POST("", handlers.CreateRoutineHandler)
			routines.GET("/courses-batches", handlers.CoursesBatchesHandler)
			routines.PUT("/:id", handlers.UpdateRoutineHandler)
			routines.PATCH("/:id", handlers.UpdateRoutineHandler)
			routines.DELETE("/:id", handlers.DeleteRoutineHandler)
		}

		subscriptions := apiGroup.Group("/subscriptions")
		{
			subscriptions.GET("", handlers.ListSubscriptionsHandler)
			subscriptions.POST("", handlers.CreateSubscriptionHandler)
			subscriptions.GET("/:id", handlers.GetSubscriptionHandler)
			subscriptions.PUT("/:id", handlers.UpdateSubscriptionHandler)
			subscriptions.PATCH("/:id", handlers.UpdateSubscriptionHandler)
			subscriptions.DELETE("/:id", handlers.DeleteSubscriptionHandler)
		}

		dashboard := apiGroup.Group("/dashboard")
		{
			dashboard.GET("/stats", handlers.DashboardStatsHandler)
		}
	}
}
