package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
)

// ErrInvalidCommand is returned when a payload fails validation or encoding.
// No frame is sent in that case.
var ErrInvalidCommand = errors.New("invalid command")

// FrameSender is the outbound side of the connection.
type FrameSender interface {
	Send(f *frame.Frame) error
}

// Sender serializes commands and hands them to the connection.
type Sender struct {
	conn     FrameSender
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSender creates a Sender writing through conn.
func NewSender(conn FrameSender, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateOrderEntry, OrderEntry{})

	return &Sender{
		conn:     conn,
		validate: v,
		logger:   logger,
	}
}

// Send validates payload, encodes it as JSON and sends it to destination.
// Transport failures are returned unchanged.
func (s *Sender) Send(destination string, payload any) error {
	if destination == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidCommand)
	}
	if err := s.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrInvalidCommand, err)
	}

	f := frame.New(frame.SEND,
		frame.Destination, destination,
		frame.ContentType, ContentTypeJSON,
	)
	f.Body = body

	if err := s.conn.Send(f); err != nil {
		return err
	}

	s.logger.Debug("command sent", "destination", destination, "size", len(body))
	return nil
}

// SendOrderEntry submits new orders. An empty RequestID is filled in.
func (s *Sender) SendOrderEntry(req OrderEntryRequest) error {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return s.Send(OrderEntryDestination, req)
}

// SendOrderModification modifies existing orders. An empty RequestID is filled in.
func (s *Sender) SendOrderModification(req OrderModificationRequest) error {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return s.Send(OrderModificationDestination, req)
}

// SendTradeCancellation requests a trade recall. An empty RequestID is filled in.
func (s *Sender) SendTradeCancellation(req TradeRecallRequest) error {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return s.Send(TradeCancellationDestination, req)
}

// SendLogout ends the session.
func (s *Sender) SendLogout() error {
	return s.Send(LogoutDestination, LogoutCommand{Type: CommandLogout})
}

// SendTokenRefresh swaps the session token.
func (s *Sender) SendTokenRefresh(oldToken, newToken string) error {
	return s.Send(TokenRefreshDestination, TokenRefreshCommand{
		Type:     CommandTokenRefresh,
		OldToken: oldToken,
		NewToken: newToken,
	})
}

func validateOrderEntry(sl validator.StructLevel) {
	o := sl.Current().Interface().(OrderEntry)

	if !o.Quantity.IsPositive() {
		sl.ReportError(o.Quantity, "Quantity", "quantity", "positive", "")
	}
	if _, err := o.UnitPrice.Cents(); err != nil {
		sl.ReportError(o.UnitPrice, "UnitPrice", "unitPrice", "cents", "")
	}
	if _, err := o.Quantity.KW(); err != nil {
		sl.ReportError(o.Quantity, "Quantity", "quantity", "kw", "")
	}
	if o.TimeInForce == TimeInForceGTD && o.ExpireTime == nil {
		sl.ReportError(o.ExpireTime, "ExpireTime", "expireTime", "required_for_gtd", "")
	}
	if o.OrderType == OrderTypeIceberg && o.ClipSize == nil {
		sl.ReportError(o.ClipSize, "ClipSize", "clipSize", "required_for_iceberg", "")
	}
}
