// stm-dashboard/internal/handlers/dashboard_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/riajulpro/stm-dashboard/config"
	"github.com/riajulpro/stm-dashboard/internal/middleware"
	"github.com/riajulpro/stm-dashboard/internal/stats"

	"github.com/gin-gonic/gin"
)

// dashboardCacheTTL keeps the snapshot fresh enough for a dashboard while
// absorbing repeated page loads.
const dashboardCacheTTL = 60 * time.Second

func dashboardCacheKey(teacherID uint) string {
	return fmt.Sprintf("dashboard:%d:stats", teacherID)
}

// DashboardStatsHandler returns the teacher's aggregated dashboard snapshot.
// Snapshots are cached in Redis for a minute and invalidated on mutation.
// Aggregation failures degrade to an all-zero snapshot rather than an error
// page, matching what the dashboard renders for a brand-new account.
func DashboardStatsHandler(c *gin.Context) {
	teacherID := middleware.CurrentTeacherID(c)

	if config.RDB != nil {
		cached, err := config.RDB.Get(config.Ctx, dashboardCacheKey(teacherID)).Result()
		if err == nil {
			var snapshot stats.Dashboard
			if json.Unmarshal([]byte(cached), &snapshot) == nil {
				c.JSON(http.StatusOK, snapshot)
				return
			}
		}
	}

	snapshot, err := stats.Collect(config.DB, teacherID, time.Now())
	if err != nil {
		slog.Error("dashboard stats collection failed", "teacher_id", teacherID, "error", err)
		c.JSON(http.StatusOK, stats.Empty())
		return
	}

	if config.RDB != nil {
		if payload, err := json.Marshal(snapshot); err == nil {
			config.RDB.Set(config.Ctx, dashboardCacheKey(teacherID), payload, dashboardCacheTTL)
		}
	}

	c.JSON(http.StatusOK, snapshot)
}
