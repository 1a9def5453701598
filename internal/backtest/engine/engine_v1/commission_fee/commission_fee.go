package commission_fee

// CommissionFee calculates the commission for a fill of the given quantity
// and returns the fee in USD.
type CommissionFee interface {
	Calculate(quantity float64) float64
}

// Broker selects a commission model.
type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

// AllBrokers lists the supported commission models for schema generation.
var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
}

// GetCommissionFeeHandler returns the commission model for a broker,
// defaulting to zero commission for unknown brokers.
func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
