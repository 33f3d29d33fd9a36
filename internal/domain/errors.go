package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrInactiveWallet = errors.New("wallet is deactivated")
	ErrInactiveMember = errors.New("member is deactivated")
)
