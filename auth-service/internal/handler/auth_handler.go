package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vasusumeet/Personal-Finance-App/auth-service/internal/query"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/middleware"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	Signup(ctx context.Context, cmd cqrs.SignupCommand) (*models.UserView, error)
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(ctx context.Context, cmd cqrs.LoginCommand) (*query.LoginResult, error)
}

type AuthHandler struct {
	commands AuthCommander
	queries  AuthQuerier
}

type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type SignupResponse struct {
	Message string           `json:"message"`
	User    *models.UserView `json:"user"`
}

type LoginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    *models.UserView `json:"user"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.Signup(c.Request.Context(), cqrs.SignupCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{Message: "User created successfully", User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "User authenticated successfully",
		Token:   result.Token,
		User:    result.User,
	})
}
