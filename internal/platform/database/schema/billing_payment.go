package schema

// BillingPaymentTable represents the 'billing.payment' table
type BillingPaymentTable struct {
	Table           string
	ID              string
	UserID          string
	Username        string
	SessionID       string
	PaymentIntentID string
	Amount          string
	Currency        string
	Status          string
	ProductType     string
	CreatedAt       string
	UpdatedAt       string
}

// BillingPayment is the schema definition for billing.payment
var BillingPayment = BillingPaymentTable{
	Table:           "billing.payment",
	ID:              "id",
	UserID:          "userid",
	Username:        "username",
	SessionID:       "sessionid",
	PaymentIntentID: "paymentintentid",
	Amount:          "amount",
	Currency:        "currency",
	Status:          "status",
	ProductType:     "producttype",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t BillingPaymentTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Username, t.SessionID, t.PaymentIntentID, t.Amount,
		t.Currency, t.Status, t.ProductType, t.CreatedAt, t.UpdatedAt,
	}
}
