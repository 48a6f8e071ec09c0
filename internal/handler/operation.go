package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/digital-banking/internal/domain"
	"github.com/josh-kwaku/digital-banking/internal/logging"
	"github.com/josh-kwaku/digital-banking/internal/service"
)

type operationService interface {
	Credit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.AccountOperation, error)
	Debit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.AccountOperation, error)
	Transfer(ctx context.Context, req service.TransferRequest) (*service.TransferResult, error)
	GetTransfer(ctx context.Context, transferID uuid.UUID) (*service.TransferResult, error)
}

type OperationHandler struct {
	operations operationService
}

func NewOperationHandler(operations operationService) *OperationHandler {
	return &OperationHandler{operations: operations}
}

// Amounts are checked by the service so that non-positive values surface
// as INVALID_AMOUNT rather than a generic validation failure.
type balanceChangeRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r balanceChangeRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountID == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "required"})
	}
	return errs
}

type transferRequest struct {
	SourceAccountID string          `json:"source_account_id"`
	DestAccountID   string          `json:"dest_account_id"`
	Amount          decimal.Decimal `json:"amount"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.SourceAccountID == "" {
		errs = append(errs, FieldError{Field: "source_account_id", Message: "required"})
	}
	if r.DestAccountID == "" {
		errs = append(errs, FieldError{Field: "dest_account_id", Message: "required"})
	}
	return errs
}

type operationDTO struct {
	ID            int64           `json:"id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	TransferID    *uuid.UUID      `json:"transfer_id,omitempty"`
	OperationDate time.Time       `json:"operation_date"`
}

func toOperationDTO(op *domain.AccountOperation) operationDTO {
	return operationDTO{
		ID:            op.ID,
		AccountID:     op.AccountID,
		Type:          string(op.Type),
		Amount:        op.Amount,
		Description:   op.Description,
		BalanceBefore: op.BalanceBefore,
		BalanceAfter:  op.BalanceAfter,
		TransferID:    op.TransferID,
		OperationDate: op.OperationDate,
	}
}

func toOperationDTOs(ops []domain.AccountOperation) []operationDTO {
	dtos := make([]operationDTO, len(ops))
	for i := range ops {
		dtos[i] = toOperationDTO(&ops[i])
	}
	return dtos
}

type transferDTO struct {
	TransferID uuid.UUID    `json:"transfer_id"`
	Debit      operationDTO `json:"debit"`
	Credit     operationDTO `json:"credit"`
}

func toTransferDTO(res *service.TransferResult) transferDTO {
	return transferDTO{
		TransferID: res.TransferID,
		Debit:      toOperationDTO(&res.Debit),
		Credit:     toOperationDTO(&res.Credit),
	}
}

func decodeBalanceChange(w http.ResponseWriter, r *http.Request) (balanceChangeRequest, bool) {
	var req balanceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return req, false
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return req, false
	}
	return req, true
}

func (h *OperationHandler) Credit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBalanceChange(w, r)
	if !ok {
		return
	}

	op, err := h.operations.Credit(r.Context(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		logging.FromContext(r.Context()).Warn("credit rejected", "account_id", req.AccountID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toOperationDTO(op))
}

func (h *OperationHandler) Debit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBalanceChange(w, r)
	if !ok {
		return
	}

	op, err := h.operations.Debit(r.Context(), req.AccountID, req.Amount, req.Description)
	if err != nil {
		logging.FromContext(r.Context()).Warn("debit rejected", "account_id", req.AccountID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toOperationDTO(op))
}

func (h *OperationHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.operations.Transfer(r.Context(), service.TransferRequest{
		From:   req.SourceAccountID,
		To:     req.DestAccountID,
		Amount: req.Amount,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer rejected",
			"source_account", req.SourceAccountID,
			"dest_account", req.DestAccountID,
			"error", err,
		)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransferDTO(res))
}

func (h *OperationHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, appErr := transferIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	res, err := h.operations.GetTransfer(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransferDTO(res))
}
