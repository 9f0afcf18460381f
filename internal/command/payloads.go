package command

import "time"

// Side is the order side.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order types.
const (
	OrderTypeLimit   = "LIMIT"
	OrderTypeIceberg = "ICEBERG"
	OrderTypeBlock   = "USER_DEFINED_BLOCK"
)

// Time in force values.
const (
	TimeInForceIOC = "IOC"
	TimeInForceFOK = "FOK"
	TimeInForceAON = "AON"
	TimeInForceGFS = "GFS"
	TimeInForceGTD = "GTD"
)

// Order modification types.
const (
	ModificationDeactivate = "DEAC"
	ModificationActivate   = "ACTI"
	ModificationModify     = "MODI"
)

// Command types sent to the generic command destination.
const (
	CommandLogout       = "LOGOUT"
	CommandTokenRefresh = "TOKEN_REFRESH"
)

// OrderEntryRequest submits one or more new orders.
type OrderEntryRequest struct {
	RequestID       string       `json:"requestId" validate:"required"`
	RejectPartially bool         `json:"rejectPartially"`
	Orders          []OrderEntry `json:"orders" validate:"required,min=1,dive"`
}

// OrderEntry is a single order inside an OrderEntryRequest.
type OrderEntry struct {
	ClientOrderID        string     `json:"clientOrderId" validate:"required"`
	PortfolioID          string     `json:"portfolioId" validate:"required"`
	ContractIDs          []string   `json:"contractIds" validate:"required,min=1,dive,required"`
	DeliveryAreaID       int        `json:"deliveryAreaId" validate:"gt=0"`
	Side                 Side       `json:"side" validate:"oneof=BUY SELL"`
	OrderType            string     `json:"orderType" validate:"oneof=LIMIT ICEBERG USER_DEFINED_BLOCK"`
	UnitPrice            Price      `json:"unitPrice"`
	Quantity             Quantity   `json:"quantity"`
	TimeInForce          string     `json:"timeInForce" validate:"oneof=IOC FOK AON GFS GTD"`
	ExecutionRestriction string     `json:"executionRestriction,omitempty" validate:"omitempty,oneof=NON AON"`
	ExpireTime           *time.Time `json:"expireTime,omitempty"`
	Text                 string     `json:"text,omitempty" validate:"max=250"`
	ClipSize             *Quantity  `json:"clipSize,omitempty"`
	ClipPriceChange      *Price     `json:"clipPriceChange,omitempty"`
}

// OrderModificationRequest changes, activates or deactivates existing orders.
type OrderModificationRequest struct {
	RequestID             string              `json:"requestId" validate:"required"`
	OrderModificationType string              `json:"orderModificationType" validate:"oneof=DEAC ACTI MODI"`
	Orders                []OrderModification `json:"orders" validate:"required,min=1,dive"`
}

// OrderModification identifies an existing order by id and revision.
type OrderModification struct {
	OrderID         string     `json:"orderId" validate:"required"`
	RevisionNo      int64      `json:"revisionNo" validate:"gte=0"`
	ClientOrderID   string     `json:"clientOrderId,omitempty"`
	PortfolioID     string     `json:"portfolioId,omitempty"`
	ContractIDs     []string   `json:"contractIds,omitempty"`
	OrderType       string     `json:"orderType,omitempty" validate:"omitempty,oneof=LIMIT ICEBERG USER_DEFINED_BLOCK"`
	UnitPrice       *Price     `json:"unitPrice,omitempty"`
	Quantity        *Quantity  `json:"quantity,omitempty"`
	TimeInForce     string     `json:"timeInForce,omitempty" validate:"omitempty,oneof=IOC FOK AON GFS GTD"`
	ExpireTime      *time.Time `json:"expireTime,omitempty"`
	Text            string     `json:"text,omitempty" validate:"max=250"`
	ClipSize        *Quantity  `json:"clipSize,omitempty"`
	ClipPriceChange *Price     `json:"clipPriceChange,omitempty"`
}

// TradeRecallRequest asks for a trade to be cancelled.
type TradeRecallRequest struct {
	RequestID  string `json:"requestId" validate:"required"`
	TradeID    string `json:"tradeId" validate:"required"`
	RevisionNo int64  `json:"revisionNo" validate:"gte=0"`
}

// LogoutCommand ends the trading session.
type LogoutCommand struct {
	Type string `json:"type" validate:"eq=LOGOUT"`
}

// TokenRefreshCommand replaces the session token without reconnecting.
type TokenRefreshCommand struct {
	Type     string `json:"type" validate:"eq=TOKEN_REFRESH"`
	OldToken string `json:"oldToken" validate:"required"`
	NewToken string `json:"newToken" validate:"required"`
}
