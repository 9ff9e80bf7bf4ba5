// Authentication HTTP handlers.
//
// This file exposes the public registration and login endpoints:
//   - POST /registration   (create user + profile, returns a token)
//   - POST /login          (verify credentials, returns a token)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegistrationRequest is the JSON payload for creating an account.
type RegistrationRequest struct {
	Username         string `json:"username" binding:"required" example:"exampleUsername"`
	Email            string `json:"email" binding:"required" example:"example@mail.de"`
	Password         string `json:"password" binding:"required"`
	RepeatedPassword string `json:"repeated_password" binding:"required"`
	// Type selects the profile role; "customer" when omitted.
	Type string `json:"type" example:"customer"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"exampleUsername"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new user with a customer or business profile and returns an access token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegistrationRequest  true  "Registration payload"
//
// @Success     201  {object}  services.Credentials
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     409  {object}  handlers.ErrorResponse "Username or email taken"
// @Router      /registration [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username, email, password, and repeated_password required")
		return
	}
	if req.Password != req.RepeatedPassword {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "repeated_password: does not match password")
		return
	}

	creds, err := h.authSvc.Register(c.Request.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password, req.Type)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, creds)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies a username/password pair and returns a fresh access token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  services.Credentials
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse "Invalid credentials"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password required")
		return
	}

	creds, err := h.authSvc.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, creds)
}
