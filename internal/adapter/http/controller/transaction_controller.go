package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/ledger-account-service/internal/adapter/http/models"
	"github.com/api-sage/ledger-account-service/internal/commons"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/api-sage/ledger-account-service/internal/usecase/service_interfaces"
)

type TransactionController struct {
	service service_interfaces.LedgerService
}

func NewTransactionController(service service_interfaces.LedgerService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"/deposit":      c.deposit,
		"/withdraw":     c.withdraw,
		"/transfer":     c.transfer,
		"/reverse":      c.reverse,
		"/transactions": c.history,
	}

	for path, handler := range routes {
		wrapped := http.Handler(handler)
		if authMiddleware != nil {
			wrapped = authMiddleware(wrapped)
		}
		mux.Handle(path, wrapped)
	}
}

func (c *TransactionController) deposit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.DepositRequest
	if !decodePost(w, r, &req, start) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError[models.MovementResponse](w, r, err, start)
		return
	}

	result, err := c.service.Credit(r.Context(), req.Username, req.Amount, domain.PurposeDeposit, req.Summary)
	if err != nil {
		respondServiceError[models.MovementResponse](w, r, "deposit failed", err, start)
		return
	}

	response := commons.SuccessResponse("Credit successful", models.NewMovementResponse(result))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) withdraw(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.WithdrawRequest
	if !decodePost(w, r, &req, start) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError[models.MovementResponse](w, r, err, start)
		return
	}

	result, err := c.service.Debit(r.Context(), req.Username, req.Amount, domain.PurposeWithdrawal, req.Summary)
	if err != nil {
		respondServiceError[models.MovementResponse](w, r, "withdrawal failed", err, start)
		return
	}

	response := commons.SuccessResponse("Debit successful", models.NewMovementResponse(result))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransferRequest
	if !decodePost(w, r, &req, start) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError[models.TransferResponse](w, r, err, start)
		return
	}

	result, err := c.service.Transfer(r.Context(), req.FromUsername, req.ToUsername, req.Amount, req.Summary)
	if err != nil {
		respondServiceError[models.TransferResponse](w, r, "transfer failed", err, start)
		return
	}

	response := commons.SuccessResponse("Transfer successful", models.NewTransferResponse(result))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) reverse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ReverseRequest
	if !decodePost(w, r, &req, start) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError[models.ReversalResponse](w, r, err, start)
		return
	}

	result, err := c.service.Reverse(r.Context(), req.Reference, req.Summary)
	if err != nil {
		respondServiceError[models.ReversalResponse](w, r, "reversal failed", err, start)
		return
	}

	response := commons.SuccessResponse("Reversal successful", models.NewReversalResponse(result))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) history(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[[]models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	username := r.URL.Query().Get("username")
	records, err := c.service.History(r.Context(), username)
	if err != nil {
		respondServiceError[[]models.TransactionResponse](w, r, "failed to fetch transactions", err, start)
		return
	}

	entries := make([]models.TransactionResponse, 0, len(records))
	for _, record := range records {
		entries = append(entries, models.NewTransactionResponse(record))
	}

	response := commons.SuccessResponse("Transactions fetched", entries)
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any, start time.Time) bool {
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[struct{}]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[struct{}]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return false
	}

	logRequest(r, dst)
	return true
}

func respondValidationError[T any](w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	logError(r, err, nil)
	response := commons.ErrorResponse[T]("validation failed", err.Error())
	writeJSON(w, http.StatusBadRequest, response)
	logResponse(r, http.StatusBadRequest, response, start)
}

func respondServiceError[T any](w http.ResponseWriter, r *http.Request, message string, err error, start time.Time) {
	logError(r, err, nil)
	status := statusForError(err)
	response := commons.ErrorResponse[T](message, err.Error())
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}
