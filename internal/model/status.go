package model

import (
	"encoding/json"
	"strings"
)

// Status is the delivery stage of an order.
type Status string

const (
	StatusReceived  Status = "received"
	StatusSended    Status = "sended"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
)

// Statuses lists every canonical status in lifecycle order.
var Statuses = []Status{StatusReceived, StatusSended, StatusInTransit, StatusDelivered}

// CourierStatuses are the stages visible to couriers.
var CourierStatuses = []Status{StatusSended, StatusInTransit, StatusDelivered}

// legacyStatuses maps vocabulary from earlier storefront revisions onto the
// canonical set.
var legacyStatuses = map[string]Status{
	"pending":         StatusReceived,
	"issued":          StatusReceived,
	"sent-to-courier": StatusSended,
}

// IsValid reports whether s is one of the canonical statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusReceived, StatusSended, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered
}

func (s Status) String() string {
	return string(s)
}

// NormalizeStatus maps a raw or legacy value to its canonical status.
// The second result is false when raw matches nothing.
func NormalizeStatus(raw string) (Status, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(v); s.IsValid() {
		return s, true
	}
	if s, ok := legacyStatuses[v]; ok {
		return s, true
	}
	return "", false
}

// UnmarshalJSON maps legacy values onto the canonical set. Values that match
// nothing are kept as sent.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if canonical, ok := NormalizeStatus(raw); ok {
		*s = canonical
		return nil
	}
	*s = Status(raw)
	return nil
}

// ParseStatus normalises raw and fails with a validation error when it is
// not a known status.
func ParseStatus(raw string) (Status, error) {
	s, ok := NormalizeStatus(raw)
	if !ok {
		return "", NewValidationError("unknown status " + quote(raw))
	}
	return s, nil
}

// ParseStatusFilter parses a list filter where "" and "all" mean no filter.
func ParseStatusFilter(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || v == "all" {
		return "", nil
	}
	return ParseStatus(v)
}

// Role identifies the actor performing an action.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCourier   Role = "courier"
	RoleAnonymous Role = "anonymous"
)

// IsStaff reports whether r is a role that can sign in.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleCourier
}
