package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openioc/vmecore/internal/types"
	"go.uber.org/zap"
)

// GET /api/v1/records
func (s *Server) listRecords(c *gin.Context) {
	statuses := s.manager.Records()

	c.JSON(http.StatusOK, gin.H{
		"records": statuses,
		"count":   len(statuses),
	})
}

// GET /api/v1/records/:name
func (s *Server) getRecord(c *gin.Context) {
	name := c.Param("name")

	status, exists := s.manager.Record(name)
	if !exists {
		c.JSON(http.StatusNotFound,
			types.NewErrorResponse("not_found", "record not found", name))
		return
	}

	c.JSON(http.StatusOK, status)
}

// PUT /api/v1/records/:name/value
//
// Binary outputs take a boolean value, multi-bit outputs a number. The
// record kind picks the decoding; a mismatched payload is a client error.
func (s *Server) writeRecord(c *gin.Context) {
	name := c.Param("name")

	status, exists := s.manager.Record(name)
	if !exists {
		c.JSON(http.StatusNotFound,
			types.NewErrorResponse("not_found", "record not found", name))
		return
	}

	var req struct {
		Value any `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			types.NewErrorResponse("bad_request", "invalid request body", err.Error()))
		return
	}

	var err error
	switch status.Kind {
	case types.RecordKindBinaryOut:
		on, ok := req.Value.(bool)
		if !ok {
			c.JSON(http.StatusBadRequest,
				types.NewErrorResponse("bad_request", "binary output takes a boolean value", req.Value))
			return
		}
		err = s.manager.WriteBinary(name, on)

	case types.RecordKindMultiBitOut:
		num, ok := req.Value.(float64)
		if !ok || num < 0 || num != float64(uint16(num)) {
			c.JSON(http.StatusBadRequest,
				types.NewErrorResponse("bad_request", "multi-bit output takes an unsigned integer value", req.Value))
			return
		}
		err = s.manager.WriteMultiBit(name, uint16(num))

	default:
		c.JSON(http.StatusBadRequest,
			types.NewErrorResponse("not_writable", "record is not an output kind", string(status.Kind)))
		return
	}

	if err != nil {
		s.writeError(c, name, err)
		return
	}

	updated, _ := s.manager.Record(name)
	c.JSON(http.StatusOK, updated)
}

// GET /api/v1/records/:name/history
//
// Only mounted when the update archive is configured.
func (s *Server) recordHistory(c *gin.Context) {
	name := c.Param("name")

	if _, exists := s.manager.Record(name); !exists {
		c.JSON(http.StatusNotFound,
			types.NewErrorResponse("not_found", "record not found", name))
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.JSON(http.StatusBadRequest,
				types.NewErrorResponse("bad_request", "limit must be between 1 and 1000", raw))
			return
		}
		limit = parsed
	}

	updates, err := s.archive.RecentUpdates(c.Request.Context(), name, limit)
	if err != nil {
		s.logger.Error("Failed to load record history",
			zap.String("record", name),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			types.NewErrorResponse("internal_error", "failed to load record history", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":  name,
		"updates": updates,
		"count":   len(updates),
	})
}

func (s *Server) writeError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, types.ErrRecordNotFound):
		c.JSON(http.StatusNotFound,
			types.NewErrorResponse("not_found", "record not found", name))
	case errors.Is(err, types.ErrNotOutput):
		c.JSON(http.StatusBadRequest,
			types.NewErrorResponse("not_writable", "record is not an output kind", name))
	case errors.Is(err, types.ErrNotBound):
		c.JSON(http.StatusConflict,
			types.NewErrorResponse("not_bound", "record failed initialization and is not functional", name))
	default:
		// Driver failure: pass the opaque status code through.
		c.JSON(http.StatusBadGateway,
			types.NewErrorResponse("driver_error", err.Error(), gin.H{
				"record": name,
				"status": types.DriverStatus(err),
			}))
	}
}
