package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/app"
	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
)

// CourseCreated is the ledger event forwarded by the course watcher.
type CourseCreated struct {
	Teacher  string  `json:"teacher" binding:"required,max=130"`
	CourseID *uint32 `json:"course_id" binding:"required"`
	Title    string  `json:"title" binding:"required"`
}

type CourseResponse struct {
	RoomID domain.RoomID `json:"room_id"`
}

type courseHandlers struct {
	rooms    *app.RoomManager
	sessions *app.Sessions
}

func (h *courseHandlers) createCourse(ctx context.Context, c *gin.Context) {
	var req CourseCreated
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner, err := domain.NewUserID(req.Teacher)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// a live room is never replaced from here
	courseID := *req.CourseID
	id, err := h.rooms.CreateRoomExclusive(ctx, owner, domain.RoomID(courseID), domain.RoomTitle(req.Title))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, core.ErrRoomExists):
			status = http.StatusConflict
		case errors.Is(err, core.ErrWorkerAcquisitionFailed):
			status = http.StatusServiceUnavailable
		}
		log.Error().Err(err).Str("module", "adapters.http").Uint32("course_id", courseID).Int("status", status).Msg("create room")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, CourseResponse{RoomID: id})
}

func (h *courseHandlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.rooms.List())
}

func (h *courseHandlers) health(c *gin.Context) {
	sessions := 0
	if h.sessions != nil {
		sessions = h.sessions.Count()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"rooms":    len(h.rooms.List()),
		"sessions": sessions,
		"workers":  h.rooms.Pool().Size(),
	})
}
