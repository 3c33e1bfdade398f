package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentRequestValidate(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"10", false},
		{"9.99", false},
		{"9.50", false},
		{"9.999", true},
		{"0", true},
		{"-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			req := PaymentRequest{Amount: decimal.RequireFromString(tt.amount)}

			err := req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductRequestRejectsFractionalCentimos(t *testing.T) {
	req := ProductRequest{Name: "Arroz", Price: decimal.RequireFromString("4.505")}
	assert.Error(t, req.Validate())

	req.Price = decimal.RequireFromString("4.50")
	assert.NoError(t, req.Validate())
}
