package family

import "errors"

var (
	ErrGroupNotFound      = errors.New("family group not found")
	ErrAlreadyInGroup     = errors.New("already in a family group")
	ErrAlreadyMember      = errors.New("already a member of this family group")
	ErrInvitationPending  = errors.New("invitation already pending")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrEmailMismatch      = errors.New("invitation is for a different email")
	ErrMemberNotFound     = errors.New("member not found")
	ErrCannotChangeOwner  = errors.New("cannot change the group owner")
)
