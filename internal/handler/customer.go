package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/logging"
	"github.com/josh-kwaku/digital-banking/internal/service"
)

type customerService interface {
	SaveCustomer(ctx context.Context, req service.CustomerRequest) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, req service.CustomerRequest) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	SearchCustomers(ctx context.Context, keyword string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
	ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.BankAccount, error)
}

type CustomerHandler struct {
	customers customerService
}

func NewCustomerHandler(customers customerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r customerRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
		}
	}
	return errs
}

type customerDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerDTO(c *domain.Customer) customerDTO {
	return customerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
	}
}

func toCustomerDTOs(customers []domain.Customer) []customerDTO {
	dtos := make([]customerDTO, len(customers))
	for i := range customers {
		dtos[i] = toCustomerDTO(&customers[i])
	}
	return dtos
}

func decodeCustomerRequest(w http.ResponseWriter, r *http.Request) (service.CustomerRequest, bool) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return service.CustomerRequest{}, false
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return service.CustomerRequest{}, false
	}
	return service.CustomerRequest{Name: req.Name, Email: req.Email}, true
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list customers", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTOs(customers))
}

func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.SearchCustomers(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to search customers", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTOs(customers))
}

func (h *CustomerHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		RespondValidationError(w, []FieldError{{Field: "email", Message: "required"}})
		return
	}

	c, err := h.customers.FindCustomerByEmail(r.Context(), email)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	c, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	id, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accounts, err := h.customers.ListCustomerAccounts(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	c, err := h.customers.SaveCustomer(r.Context(), req)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create customer", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	req, ok := decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	c, err := h.customers.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.customers.DeleteCustomer(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
