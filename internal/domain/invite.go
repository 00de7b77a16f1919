package domain

import (
	"fmt"
	"slices"
	"time"
)

// Invite offers membership of a trip to an email address that is not yet
// bound to a user. Email is always normalized.
type Invite struct {
	ID        InviteID
	Email     string
	Role      Role
	Status    InviteStatus
	CreatedAt time.Time
}

// PendingInvite returns the pending invite for email, if any.
func (t Trip) PendingInvite(email string) (Invite, bool) {
	i := t.pendingInviteIndex(NormalizeEmail(email))
	if i < 0 {
		return Invite{}, false
	}
	return t.Invites[i], true
}

func (t Trip) pendingInviteIndex(email string) int {
	return slices.IndexFunc(t.Invites, func(inv Invite) bool {
		return inv.Email == email && inv.Status == InviteStatusPending
	})
}

// InviteCollaborator offers role to email. registered is the id of the user
// already registered under that email, or nil.
//
// A registered user who is already a member fails with ErrConflict. When a
// pending invite for the email exists its role is replaced in place;
// otherwise a new pending invite is added. The returned Invite is the one
// that was created or updated.
func (t Trip) InviteCollaborator(email string, role Role, registered *UserID) (Trip, Invite, error) {
	normalized, err := ValidateEmail(email)
	if err != nil {
		return Trip{}, Invite{}, err
	}
	if !role.IsMemberRole() {
		return Trip{}, Invite{}, fmt.Errorf("%w: invalid role %s", ErrValidation, role)
	}
	if registered != nil {
		if _, ok := t.Member(*registered); ok {
			return Trip{}, Invite{}, fmt.Errorf("%s is already a member: %w", normalized, ErrConflict)
		}
	}

	next := t.clone()
	var inv Invite
	if i := next.pendingInviteIndex(normalized); i >= 0 {
		next.Invites[i].Role = role
		inv = next.Invites[i]
	} else {
		inv = Invite{
			ID:     NewInviteID(),
			Email:  normalized,
			Role:   role,
			Status: InviteStatusPending,
		}
		next.Invites = append(next.Invites, inv)
	}

	next, err = commit(next)
	if err != nil {
		return Trip{}, Invite{}, err
	}
	return next, inv, nil
}

// RevokeInvite moves the pending invite for email to Revoked.
// Fails with ErrNotFound when there is no pending invite for that email.
func (t Trip) RevokeInvite(email string) (Trip, Invite, error) {
	normalized := NormalizeEmail(email)
	i := t.pendingInviteIndex(normalized)
	if i < 0 {
		return Trip{}, Invite{}, fmt.Errorf("pending invite for %s: %w", normalized, ErrNotFound)
	}
	next := t.clone()
	next.Invites[i].Status = InviteStatusRevoked
	inv := next.Invites[i]

	next, err := commit(next)
	if err != nil {
		return Trip{}, Invite{}, err
	}
	return next, inv, nil
}

// AcceptInvite promotes the pending invite for email into a membership for
// userID with the invite's role and moves the invite to Accepted.
// Fails with ErrNotFound when no pending invite exists and with ErrConflict
// when userID is already a member.
func (t Trip) AcceptInvite(email string, userID UserID) (Trip, Invite, error) {
	normalized := NormalizeEmail(email)
	i := t.pendingInviteIndex(normalized)
	if i < 0 {
		return Trip{}, Invite{}, fmt.Errorf("pending invite for %s: %w", normalized, ErrNotFound)
	}
	if _, ok := t.Member(userID); ok {
		return Trip{}, Invite{}, fmt.Errorf("user %s is already a member: %w", userID, ErrConflict)
	}
	next := t.clone()
	next.Invites[i].Status = InviteStatusAccepted
	inv := next.Invites[i]
	next.Memberships = append(next.Memberships, Membership{UserID: userID, Role: inv.Role})

	next, err := commit(next)
	if err != nil {
		return Trip{}, Invite{}, err
	}
	return next, inv, nil
}
