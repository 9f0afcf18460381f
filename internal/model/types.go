package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyPayload is returned when a message carries no content.
var ErrEmptyPayload = errors.New("empty payload")

// DeliveryAreaRow describes one delivery area as published on the DeliveryAreas topic.
type DeliveryAreaRow struct {
	DeliveryAreaID int       `json:"deliveryAreaId"`
	EICCode        string    `json:"eicCode"`
	CurrencyCode   string    `json:"currentyCode"` // sic
	AreaCode       string    `json:"areaCode"`
	TimeZone       string    `json:"timeZone"`
	CountryISOCode string    `json:"countryIsoCode"`
	ProductTypes   []string  `json:"productTypes"`
	Deleted        bool      `json:"deleted"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DecodeRows parses a message body holding a JSON array of rows.
func DecodeRows[T any](content string) ([]T, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyPayload
	}

	var rows []T
	if err := json.Unmarshal([]byte(content), &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// ActiveAreas filters out deleted rows.
func ActiveAreas(rows []DeliveryAreaRow) []DeliveryAreaRow {
	out := make([]DeliveryAreaRow, 0, len(rows))
	for _, r := range rows {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out
}
