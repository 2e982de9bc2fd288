package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPrecondition     = errors.New("precondition failed")
	ErrContractLocked   = errors.New("contract is signed")
	ErrConflict         = errors.New("concurrent update, try again")
	ErrNoAmount         = errors.New("no billable amount")
)
