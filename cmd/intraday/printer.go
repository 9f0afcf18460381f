package main

import (
	"log/slog"

	"github.com/rickgao/intraday-client/internal/model"
	"github.com/rickgao/intraday-client/internal/router"
	"github.com/rickgao/intraday-client/internal/subscription"
)

// messageHandler logs each message on topic. DeliveryAreas payloads are
// decoded and summarised.
func messageHandler(topic subscription.Topic, logger *slog.Logger) router.Handler {
	log := logger.With("topic", topic.String())

	if topic == subscription.DeliveryAreas {
		return func(msg router.Message) error {
			rows, err := model.DecodeRows[model.DeliveryAreaRow](msg.Content)
			if err != nil {
				return err
			}
			active := model.ActiveAreas(rows)
			log.Info("delivery areas received",
				"subscription_id", msg.SubscriptionID,
				"rows", len(rows),
				"active", len(active),
			)
			for _, area := range active {
				log.Debug("delivery area",
					"id", area.DeliveryAreaID,
					"area_code", area.AreaCode,
					"eic_code", area.EICCode,
					"currency", area.CurrencyCode,
				)
			}
			return nil
		}
	}

	return func(msg router.Message) error {
		log.Info("message received",
			"subscription_id", msg.SubscriptionID,
			"destination", msg.Destination,
			"bytes", len(msg.Content),
		)
		log.Debug("message content", "content", msg.Content)
		return nil
	}
}
