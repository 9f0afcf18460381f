package command

// Fixed command destinations.
const (
	OrderEntryDestination        = "/v1/orderEntryRequest"
	OrderModificationDestination = "/v1/orderModificationRequest"
	TradeCancellationDestination = "/v1/tradeCancellationRequest"
	LogoutDestination            = "/v1/command"
	TokenRefreshDestination      = "/v1/command"
)

// ContentTypeJSON is set on every SEND frame.
const ContentTypeJSON = "application/json"
