package domain

import (
	"fmt"
	"strings"
)

// Role is a per-trip access level. Roles are totally ordered:
// RoleNone < RoleViewer < RoleEditor < RoleOwner.
//
// RoleNone is only meaningful as a requirement: it is the read-only level that
// public trips grant to anyone. Memberships and invites never carry it.
type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	RoleOwner
)

var roleNames = map[Role]string{
	RoleNone:   "NONE",
	RoleViewer: "VIEWER",
	RoleEditor: "EDITOR",
	RoleOwner:  "OWNER",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Satisfies reports whether a holder of r may act where required is needed.
func (r Role) Satisfies(required Role) bool {
	return r >= required
}

// IsMemberRole reports whether r can be held by a membership or an invite.
func (r Role) IsMemberRole() bool {
	return r >= RoleViewer && r <= RoleOwner
}

// ParseRole parses a membership role name, case-insensitively.
// "NONE" is rejected because it cannot be assigned.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VIEWER":
		return RoleViewer, nil
	case "EDITOR":
		return RoleEditor, nil
	case "OWNER":
		return RoleOwner, nil
	}
	return RoleNone, fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) (err error) {
	*r, err = ParseRole(string(b))
	return err
}

// Visibility controls whether non-members may read a trip.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityPublic  Visibility = "PUBLIC"
)

// ParseVisibility parses a visibility name, case-insensitively.
// An empty string yields VisibilityPrivate.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToUpper(strings.TrimSpace(s))); v {
	case "":
		return VisibilityPrivate, nil
	case VisibilityPrivate, VisibilityPublic:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown visibility %q", ErrValidation, s)
}

// InviteStatus is the state of an invite. Accepted and Revoked are terminal.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusRevoked  InviteStatus = "REVOKED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s InviteStatus) Terminal() bool {
	return s == InviteStatusAccepted || s == InviteStatusRevoked
}

// ParseInviteStatus parses a stored invite status.
func ParseInviteStatus(s string) (InviteStatus, error) {
	switch v := InviteStatus(s); v {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusRevoked:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown invite status %q", ErrValidation, s)
}
