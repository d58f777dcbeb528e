package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/ledger-account-service/internal/adapter/http/models"
	"github.com/api-sage/ledger-account-service/internal/commons"
	"github.com/api-sage/ledger-account-service/internal/usecase/service_interfaces"
)

type UserController struct {
	service service_interfaces.UserService
}

func NewUserController(service service_interfaces.UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	register := http.Handler(http.HandlerFunc(c.register))
	login := http.Handler(http.HandlerFunc(c.login))
	if authMiddleware != nil {
		register = authMiddleware(register)
		login = authMiddleware(login)
	}

	mux.Handle("/users", register)
	mux.Handle("/users/login", login)
}

func (c *UserController) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateUserRequest
	if !decodePost(w, r, &req, start) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError[models.UserResponse](w, r, err, start)
		return
	}

	account, err := c.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError[models.UserResponse](w, r, "failed to create user", err, start)
		return
	}

	response := commons.SuccessResponse("User created successfully", models.NewUserResponse(account))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *UserController) login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.LoginRequest
	if !decodePost(w, r, &req, start) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError[models.UserResponse](w, r, err, start)
		return
	}

	account, err := c.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError[models.UserResponse](w, r, "login failed", err, start)
		return
	}

	response := commons.SuccessResponse("Login successful", models.NewUserResponse(account))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
