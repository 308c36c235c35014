package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salemre/backend/internal/api/middleware"
	"salemre/backend/internal/services"
)

// UserHandler serves /api/auth and /api/users.
type UserHandler struct {
	users services.IUserService
}

func NewUserHandler(users services.IUserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register handles POST /api/auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusCreated, res)
}

// Login handles POST /api/auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &body) {
		return
	}
	res, err := h.users.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, res)
}

// Me handles GET /api/auth/me.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, u)
}

// UpdateProfile handles PUT /api/auth/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in services.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, u)
}

func (h *UserHandler) List(c *gin.Context) {
	res, err := h.users.List(c.Request.Context(), c.Request.URL.Query(), middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, res)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, u)
}

func (h *UserHandler) Create(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.users.Create(c.Request.Context(), in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusCreated, u)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var in services.UserUpdate
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.users.Update(c.Request.Context(), id, in, middleware.ActorFrom(c))
	if err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		sendError(c, err)
		return
	}
	sendData(c, http.StatusOK, gin.H{})
}
