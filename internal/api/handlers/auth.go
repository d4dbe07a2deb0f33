package handlers

import (
	"net/http"

	"github.com/Basic-PDF-Manager/Document-Service/internal/session"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	token, user, ok := h.Sessions.Login(req.Username, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
		return
	}

	c.SetCookie(session.CookieName, token, 24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"username": user.Username, "name": user.Name},
	})
}

func (h *Handlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil {
		h.Sessions.Destroy(token)
	}
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CurrentUser runs behind RequireAuth.
func (h *Handlers) CurrentUser(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not logged in"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// CheckAuth reports session state without requiring one; it always
// answers 200 so the frontend can poll it before login.
func (h *Handlers) CheckAuth(c *gin.Context) {
	token, err := c.Cookie(session.CookieName)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Not logged in"})
		return
	}
	user, ok := h.Sessions.Get(token)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
