package commission_fee

// InteractiveBrokerCommissionFee models the fixed-tier US equity pricing:
// half a cent per share with a one dollar minimum per fill.
type InteractiveBrokerCommissionFee struct {
}

// NewInteractiveBrokerCommissionFee creates the Interactive Brokers style
// commission model.
func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

// Calculate implements the CommissionFee interface.
func (c *InteractiveBrokerCommissionFee) Calculate(quantity float64) float64 {
	fee := 0.005 * quantity
	if fee < 1.0 {
		return 1.0
	}

	return fee
}
