package entity

// Counter is a named monotonically increasing sequence stored in the
// database. Invoice-number allocation increments it atomically so concurrent
// creators never observe the same value.
type Counter struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

func (Counter) TableName() string {
	return "counters"
}

// CounterInvoice names the invoice-number sequence.
const CounterInvoice = "invoice_number"
