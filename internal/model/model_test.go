package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Quantity
	}{
		{name: "Number", input: `3`, expected: 3},
		{name: "Numeric string", input: `"3"`, expected: 3},
		{name: "Padded string", input: `" 12 "`, expected: 12},
		{name: "Float truncates", input: `2.9`, expected: 2},
		{name: "Malformed string", input: `"abc"`, expected: 0},
		{name: "Empty string", input: `""`, expected: 0},
		{name: "Null", input: `null`, expected: 0},
		{name: "Negative", input: `-4`, expected: -4},
		{name: "Overflow", input: `"99999999999999999999"`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Quantity Quantity `json:"quantity"`
			}
			err := json.Unmarshal([]byte(`{"quantity":`+tt.input+`}`), &payload)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, payload.Quantity)
		})
	}
}

func TestQuantity_MarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(struct {
		Quantity Quantity `json:"quantity"`
	}{Quantity: 5})

	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":5}`, string(data))
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected Status
		ok       bool
	}{
		{raw: "received", expected: StatusReceived, ok: true},
		{raw: "sended", expected: StatusSended, ok: true},
		{raw: "in-transit", expected: StatusInTransit, ok: true},
		{raw: "delivered", expected: StatusDelivered, ok: true},
		{raw: " Delivered ", expected: StatusDelivered, ok: true},
		{raw: "pending", expected: StatusReceived, ok: true},
		{raw: "issued", expected: StatusReceived, ok: true},
		{raw: "sent-to-courier", expected: StatusSended, ok: true},
		{raw: "cancelled", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeStatus(tt.raw)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatus_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		{input: `"in-transit"`, expected: StatusInTransit},
		{input: `"sent-to-courier"`, expected: StatusSended},
		{input: `"pending"`, expected: StatusReceived},
		{input: `" Delivered "`, expected: StatusDelivered},
		{input: `"lost"`, expected: Status("lost")},
		{input: `null`, expected: Status("")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var o Order
			err := json.Unmarshal([]byte(`{"id":"o1","status":`+tt.input+`}`), &o)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, o.Status)
		})
	}

	var o Order
	assert.Error(t, json.Unmarshal([]byte(`{"status":3}`), &o))
}

func TestParseStatusFilter(t *testing.T) {
	s, err := ParseStatusFilter("all")
	require.NoError(t, err)
	assert.Equal(t, Status(""), s)

	s, err = ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, Status(""), s)

	s, err = ParseStatusFilter("in-transit")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, s)

	_, err = ParseStatusFilter("shipped")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range Statuses {
		assert.Equal(t, s == StatusDelivered, s.IsTerminal(), s)
	}
}

func TestDomainError_Is(t *testing.T) {
	err := NewValidationError("fullName is required")
	wrapped := fmt.Errorf("failed to create order: %w", err)

	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.ErrorIs(t, ErrInvalidQuantity, ErrValidation)
	assert.False(t, errors.Is(errors.New("plain"), ErrValidation))

	transition := NewInvalidTransitionError(StatusReceived, StatusDelivered, RoleCourier)
	assert.ErrorIs(t, transition, ErrInvalidTransition)
	assert.Contains(t, transition.Error(), `"received"`)
	assert.Contains(t, transition.Error(), `"courier"`)
}

func TestListParams_Offset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, ListParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, ListParams{Page: 0, Limit: 10}.Offset())
}
