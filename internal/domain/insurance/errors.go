package insurance

import "errors"

var (
	ErrPolicyNotFound        = errors.New("policy not found")
	ErrPolicyNumberTaken     = errors.New("policy number taken")
	ErrPolicyNumberExhausted = errors.New("policy number generation failed")
)
