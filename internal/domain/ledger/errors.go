package ledger

import "errors"

var (
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")
	ErrUserNotFound           = errors.New("user not found")
)
