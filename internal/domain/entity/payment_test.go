package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPaymentItemsTotal(t *testing.T) {
	p := &Payment{
		Items: []PaymentItem{
			{Amount: decimal.NewFromInt(100)},
			{Amount: decimal.NewFromInt(50)},
		},
		Tax:      decimal.NewFromInt(15),
		Discount: decimal.NewFromInt(5),
	}

	want := decimal.NewFromInt(160)
	if got := p.ItemsTotal(); !got.Equal(want) {
		t.Errorf("ItemsTotal() = %s, want %s", got, want)
	}
}

func TestPaymentItemsTotalEmpty(t *testing.T) {
	p := &Payment{Tax: decimal.NewFromInt(10)}
	if got := p.ItemsTotal(); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("ItemsTotal() = %s, want 10", got)
	}
}

func TestPaymentRefundedAmount(t *testing.T) {
	p := &Payment{}
	if !p.RefundedAmount().IsZero() {
		t.Error("expected zero refunded amount without refund info")
	}

	p.RefundInfo = &RefundInfo{RefundAmount: decimal.NewFromInt(25)}
	if got := p.RefundedAmount(); !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("RefundedAmount() = %s, want 25", got)
	}
}

func TestPaymentStatusAfterRefund(t *testing.T) {
	p := &Payment{Amount: decimal.NewFromInt(200)}

	if got := p.StatusAfterRefund(decimal.NewFromInt(200)); got != PaymentStatusRefunded {
		t.Errorf("full refund: got %s, want %s", got, PaymentStatusRefunded)
	}
	if got := p.StatusAfterRefund(decimal.NewFromInt(50)); got != PaymentStatusPartiallyPaid {
		t.Errorf("partial refund: got %s, want %s", got, PaymentStatusPartiallyPaid)
	}
}
