package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsBusinessError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrProductNotFound, true},
		{"wrapped sentinel", fmt.Errorf("checkout: %w", ErrEmptyCart), true},
		{"validation", &ValidationError{Field: "name", Reason: "must not be empty"}, true},
		{"insufficient stock", &InsufficientStockError{ProductID: 1, Requested: 3, Available: 1}, true},
		{"infrastructure", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, c := range cases {
		if got := IsBusinessError(c.err); got != c.want {
			t.Fatalf("%s: IsBusinessError = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestErrorMessagesNameTheOffender(t *testing.T) {
	ve := &ValidationError{Field: "price", Reason: "must not be negative"}
	if ve.Error() != "invalid price: must not be negative" {
		t.Fatalf("unexpected message: %q", ve.Error())
	}

	ise := &InsufficientStockError{ProductID: 7, ProductName: "Cola", Requested: 3, Available: 1}
	if ise.Error() != "insufficient stock for product 7 (Cola): requested 3, available 1" {
		t.Fatalf("unexpected message: %q", ise.Error())
	}
}
