package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/model"
)

// Success messages.
const (
	msgRegistered = "Registration successful."
	msgLoggedIn   = "Login successful."
	msgLoggedOut  = "Logout successful."
)

type credentialsForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// SessionResponse is returned by register and login. SessionToken carries the
// same value as the cookie so non-browser clients can replay it.
type SessionResponse struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
}

// MessageResponse is returned by logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// TodoResponse is the todo list shape.
type TodoResponse struct {
	List []string `json:"list"`
}

type addTaskRequest struct {
	Task *string `json:"task" binding:"required"`
}

// Register creates an account and starts a session.
func (s *Server) Register(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		s.metrics.AuthEvent("register", KindInvalidRequest)
		s.fail(c, errs.ErrInvalidInput)
		return
	}
	tok, err := s.auth.Register(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		s.metrics.AuthEvent("register", classify(err).body.Error)
		s.fail(c, err)
		return
	}
	s.startSession(c, "register", msgRegistered, tok)
}

// Login verifies credentials and starts a session.
func (s *Server) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		s.metrics.AuthEvent("login", KindInvalidRequest)
		s.fail(c, errs.ErrInvalidInput)
		return
	}
	tok, err := s.auth.Login(c.Request.Context(), form.Username, form.Password, c.ClientIP())
	if err != nil {
		s.metrics.AuthEvent("login", classify(err).body.Error)
		s.fail(c, err)
		return
	}
	s.startSession(c, "login", msgLoggedIn, tok)
}

// Logout ends the session named by the cookie.
func (s *Server) Logout(c *gin.Context) {
	tok, ok := s.cookies.token(c)
	if !ok {
		s.metrics.AuthEvent("logout", KindMissingSessionToken)
		s.fail(c, errs.ErrMissingSessionToken)
		return
	}
	if err := s.auth.Logout(c.Request.Context(), &tok); err != nil {
		s.metrics.AuthEvent("logout", classify(err).body.Error)
		s.fail(c, err)
		return
	}
	s.metrics.AuthEvent("logout", "ok")
	s.cookies.clear(c)
	c.JSON(http.StatusOK, MessageResponse{Message: msgLoggedOut})
}

// RequireSession resolves the session cookie and stores the owner in the request context.
// An absent or unknown session fails with ErrSessionInvalid.
func (s *Server) RequireSession(c *gin.Context) {
	tok, ok := s.cookies.token(c)
	if !ok {
		s.fail(c, errs.ErrSessionInvalid)
		return
	}
	id, found, err := s.auth.Resolve(c.Request.Context(), &tok)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		s.fail(c, errs.ErrSessionInvalid)
		return
	}
	c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), id))
	c.Next()
}

// GetTodo returns the caller's list.
func (s *Server) GetTodo(c *gin.Context) {
	owner, ok := UserIDFromCtx(c.Request.Context())
	if !ok {
		s.fail(c, errs.ErrSessionInvalid)
		return
	}
	tasks, err := s.todos.GetList(c.Request.Context(), owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TodoResponse{List: tasks})
}

// AddTodo appends one task and returns the resulting list.
func (s *Server) AddTodo(c *gin.Context) {
	owner, ok := UserIDFromCtx(c.Request.Context())
	if !ok {
		s.fail(c, errs.ErrSessionInvalid)
		return
	}
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.ErrInvalidInput)
		return
	}
	tasks, err := s.todos.AddTask(c.Request.Context(), owner, *req.Task)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TodoResponse{List: tasks})
}

func (s *Server) startSession(c *gin.Context, event, msg string, tok model.SessionToken) {
	value, err := s.cookies.encode(tok)
	if err != nil {
		s.metrics.AuthEvent(event, KindInternalServerError)
		s.fail(c, err)
		return
	}
	s.metrics.AuthEvent(event, "ok")
	s.cookies.set(c, value)
	c.JSON(http.StatusOK, SessionResponse{Message: msg, SessionToken: value})
}
