package domain

import "time"

// Snapshot is a generic value tree recorded by the audit trail before and
// after a change. Leaves are strings, float64s, int64s, bools or nil; inner
// nodes are Snapshot maps and []any sequences. The audit sink stores it as
// opaque JSON.
type Snapshot map[string]any

// Snapshotter is implemented by every entity the audit trail can record.
type Snapshotter interface {
	Snapshot() Snapshot
}

// SnapshotOf returns v's snapshot, or nil when v is nil.
func SnapshotOf(v Snapshotter) Snapshot {
	if v == nil {
		return nil
	}
	return v.Snapshot()
}

// Snapshot captures the whole aggregate.
func (t Trip) Snapshot() Snapshot {
	members := make([]any, len(t.Memberships))
	for i, m := range t.Memberships {
		members[i] = m.Snapshot()
	}
	invites := make([]any, len(t.Invites))
	for i, inv := range t.Invites {
		invites[i] = inv.Snapshot()
	}
	items := make([]any, len(t.Items))
	for i, it := range t.Items {
		items[i] = it.Snapshot()
	}
	return Snapshot{
		"id":          t.ID.String(),
		"name":        t.Name,
		"start_date":  t.StartDate.Format(time.DateOnly),
		"end_date":    t.EndDate.Format(time.DateOnly),
		"visibility":  string(t.Visibility),
		"version":     t.Version,
		"memberships": members,
		"invites":     invites,
		"items":       items,
	}
}

func (m Membership) Snapshot() Snapshot {
	return Snapshot{"user_id": m.UserID.String(), "role": m.Role.String()}
}

func (inv Invite) Snapshot() Snapshot {
	return Snapshot{
		"id":     inv.ID.String(),
		"email":  inv.Email,
		"role":   inv.Role.String(),
		"status": string(inv.Status),
	}
}

func (it ItineraryItem) Snapshot() Snapshot {
	s := Snapshot{
		"id":         it.ID.String(),
		"place_name": it.PlaceName,
		"notes":      it.Notes,
		"date":       nil,
		"latitude":   nil,
		"longitude":  nil,
	}
	if it.Date != nil {
		s["date"] = it.Date.Format(time.DateOnly)
	}
	if it.Latitude != nil {
		s["latitude"] = *it.Latitude
	}
	if it.Longitude != nil {
		s["longitude"] = *it.Longitude
	}
	return s
}

// Snapshot omits the password hash.
func (u User) Snapshot() Snapshot {
	return Snapshot{
		"id":           u.ID.String(),
		"email":        u.Email,
		"display_name": u.DisplayName,
	}
}
