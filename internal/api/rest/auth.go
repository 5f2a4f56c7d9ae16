package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openioc/vmecore/internal/types"
)

// POST /api/v1/auth/login
func (s *Server) login(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			types.NewErrorResponse("bad_request", "invalid request body", err.Error()))
		return
	}

	token, err := s.auth.Login(req.Name, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized,
			types.NewErrorResponse("unauthorized", "invalid credentials", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}
