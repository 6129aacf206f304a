package command

// ProcessPaymentCommand carries the input of the process_payment
// operation. Amount is kept as its decimal string form until the Money
// value object parses it.
type ProcessPaymentCommand struct {
	UserID        string
	Amount        string
	Currency      string
	PaymentMethod string
	Reference     *string
	Metadata      map[string]any
}

func ProcessPaymentCommandFromMap(m map[string]any) (ProcessPaymentCommand, error) {
	if err := checkFields(m, "user_id", "amount", "currency", "payment_method", "reference", "metadata"); err != nil {
		return ProcessPaymentCommand{}, err
	}
	userID, err := requireString(m, "user_id")
	if err != nil {
		return ProcessPaymentCommand{}, err
	}
	amount, err := requireAmount(m, "amount")
	if err != nil {
		return ProcessPaymentCommand{}, err
	}
	currency, err := requireString(m, "currency")
	if err != nil {
		return ProcessPaymentCommand{}, err
	}
	method, err := requireString(m, "payment_method")
	if err != nil {
		return ProcessPaymentCommand{}, err
	}
	reference, err := optionalString(m, "reference")
	if err != nil {
		return ProcessPaymentCommand{}, err
	}
	metadata, err := optionalMapField(m, "metadata")
	if err != nil {
		return ProcessPaymentCommand{}, err
	}
	return ProcessPaymentCommand{
		UserID:        userID,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: method,
		Reference:     reference,
		Metadata:      metadata,
	}, nil
}

// RefundPaymentCommand carries the input of the refund_payment operation.
type RefundPaymentCommand struct {
	PaymentID string
	Reason    *string
}

func RefundPaymentCommandFromMap(m map[string]any) (RefundPaymentCommand, error) {
	if err := checkFields(m, "payment_id", "reason"); err != nil {
		return RefundPaymentCommand{}, err
	}
	paymentID, err := requireString(m, "payment_id")
	if err != nil {
		return RefundPaymentCommand{}, err
	}
	reason, err := optionalString(m, "reason")
	if err != nil {
		return RefundPaymentCommand{}, err
	}
	return RefundPaymentCommand{PaymentID: paymentID, Reason: reason}, nil
}
