package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/logging"
)

const defaultHistoryPageSize = 5

type accountService interface {
	SaveCurrentAccount(ctx context.Context, initialBalance, overdraft decimal.Decimal, customerID int64) (*domain.BankAccount, error)
	SaveSavingAccount(ctx context.Context, initialBalance, interestRate decimal.Decimal, customerID int64) (*domain.BankAccount, error)
	GetAccount(ctx context.Context, id string) (*domain.BankAccount, error)
	ListAccounts(ctx context.Context) ([]domain.BankAccount, error)
	DeleteAccount(ctx context.Context, id string) error
	AccountHistory(ctx context.Context, id string) ([]domain.AccountOperation, error)
	AccountHistoryPage(ctx context.Context, id string, page, size int) (*domain.AccountHistory, error)
	ActivateAccount(ctx context.Context, id string) (*domain.BankAccount, error)
	SuspendAccount(ctx context.Context, id string) (*domain.BankAccount, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createCurrentAccountRequest struct {
	CustomerID     int64           `json:"customer_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Overdraft      decimal.Decimal `json:"overdraft"`
}

func (r createCurrentAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CustomerID <= 0 {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if domain.ValidateOverdraft(r.Overdraft) != nil {
		errs = append(errs, FieldError{Field: "overdraft", Message: "must be between 0 and 10^15 with at most 4 decimal places"})
	}
	return errs
}

type createSavingAccountRequest struct {
	CustomerID     int64           `json:"customer_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
}

func (r createSavingAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CustomerID <= 0 {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if domain.ValidateInterestRate(r.InterestRate) != nil {
		errs = append(errs, FieldError{Field: "interest_rate", Message: "must be between 0 and 10^5 with at most 4 decimal places"})
	}
	return errs
}

type accountDTO struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	CustomerID   int64            `json:"customer_id"`
	Balance      decimal.Decimal  `json:"balance"`
	Status       string           `json:"status"`
	Overdraft    *decimal.Decimal `json:"overdraft,omitempty"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func toAccountDTO(a *domain.BankAccount) accountDTO {
	dto := accountDTO{
		ID:         a.ID,
		Type:       string(a.Kind()),
		CustomerID: a.CustomerID,
		Balance:    a.Balance,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}
	switch v := a.Variant.(type) {
	case domain.CurrentAccount:
		dto.Overdraft = &v.Overdraft
	case domain.SavingAccount:
		dto.InterestRate = &v.InterestRate
	}
	return dto
}

func toAccountDTOs(accounts []domain.BankAccount) []accountDTO {
	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	return dtos
}

type historyDTO struct {
	AccountID   string          `json:"account_id"`
	Balance     decimal.Decimal `json:"balance"`
	CurrentPage int             `json:"current_page"`
	PageSize    int             `json:"page_size"`
	TotalPages  int             `json:"total_pages"`
	Operations  []operationDTO  `json:"operations"`
}

func (h *AccountHandler) CreateCurrent(w http.ResponseWriter, r *http.Request) {
	var req createCurrentAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.SaveCurrentAccount(r.Context(), req.InitialBalance, req.Overdraft, req.CustomerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create current account", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) CreateSaving(w http.ResponseWriter, r *http.Request) {
	var req createSavingAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.SaveSavingAccount(r.Context(), req.InitialBalance, req.InterestRate, req.CustomerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create saving account", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccount(r.Context(), accountIDFromPath(r))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAccount(r.Context(), accountIDFromPath(r)); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) Operations(w http.ResponseWriter, r *http.Request) {
	ops, err := h.accounts.AccountHistory(r.Context(), accountIDFromPath(r))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toOperationDTOs(ops))
}

func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	page, okPage := queryInt(r, "page", 0)
	size, okSize := queryInt(r, "size", defaultHistoryPageSize)

	var fields []FieldError
	if !okPage {
		fields = append(fields, FieldError{Field: "page", Message: "must be a non-negative integer"})
	}
	switch {
	case !okSize || size == 0:
		fields = append(fields, FieldError{Field: "size", Message: "must be a positive integer"})
	case size > domain.MaxHistoryPageSize:
		fields = append(fields, FieldError{Field: "size", Message: fmt.Sprintf("must not exceed %d", domain.MaxHistoryPageSize)})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	history, err := h.accounts.AccountHistoryPage(r.Context(), accountIDFromPath(r), page, size)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, historyDTO{
		AccountID:   history.AccountID,
		Balance:     history.Balance,
		CurrentPage: history.CurrentPage,
		PageSize:    history.PageSize,
		TotalPages:  history.TotalPages,
		Operations:  toOperationDTOs(history.Operations),
	})
}

func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.ActivateAccount(r.Context(), accountIDFromPath(r))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.SuspendAccount(r.Context(), accountIDFromPath(r))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}
