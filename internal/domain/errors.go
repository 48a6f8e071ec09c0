package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrBankAccountNotFound     = errors.New("bank account not found")
	ErrTransferNotFound        = errors.New("transfer not found")
	ErrBalanceNotSufficient    = errors.New("balance not sufficient")
	ErrInvalidAmount           = errors.New("amount must be positive with at most 4 decimal places")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrAccountSuspended        = errors.New("account suspended")
	ErrSelfTransfer            = errors.New("cannot transfer to same account")
	ErrInvalidStatusTransition = errors.New("invalid account status transition")
	ErrVersionConflict         = errors.New("optimistic lock conflict")
)
