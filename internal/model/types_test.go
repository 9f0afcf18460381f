package model

import (
	"errors"
	"testing"
	"time"
)

const deliveryAreasPayload = `[
  {"deliveryAreaId":2,"eicCode":"10YDK-1--------W","currentyCode":"EUR","areaCode":"DK1","timeZone":"CET","countryIsoCode":"DK","productTypes":["PH","QH"],"deleted":false,"updatedAt":"2024-03-01T10:15:00Z"},
  {"deliveryAreaId":3,"eicCode":"10YDK-2--------M","currentyCode":"EUR","areaCode":"DK2","timeZone":"CET","countryIsoCode":"DK","productTypes":null,"deleted":true,"updatedAt":"2024-03-01T10:16:00Z"}
]`

func TestDecodeRows_DeliveryAreas(t *testing.T) {
	rows, err := DecodeRows[DeliveryAreaRow](deliveryAreasPayload)
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.DeliveryAreaID != 2 {
		t.Errorf("DeliveryAreaID = %d, want 2", first.DeliveryAreaID)
	}
	if first.CurrencyCode != "EUR" {
		t.Errorf("CurrencyCode = %q, want EUR", first.CurrencyCode)
	}
	if first.AreaCode != "DK1" {
		t.Errorf("AreaCode = %q, want DK1", first.AreaCode)
	}
	if len(first.ProductTypes) != 2 || first.ProductTypes[1] != "QH" {
		t.Errorf("ProductTypes = %v", first.ProductTypes)
	}
	want := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
	if !first.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", first.UpdatedAt, want)
	}

	if rows[1].ProductTypes != nil {
		t.Errorf("ProductTypes = %v, want nil", rows[1].ProductTypes)
	}
	if !rows[1].Deleted {
		t.Error("Deleted = false, want true")
	}
}

func TestDecodeRows_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		empty   bool
	}{
		{"empty", "", true},
		{"whitespace", "  \n", true},
		{"object not array", `{"deliveryAreaId":1}`, false},
		{"malformed", `[{"deliveryAreaId":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRows[DeliveryAreaRow](tt.content)
			if err == nil {
				t.Fatal("DecodeRows() error = nil")
			}
			if got := errors.Is(err, ErrEmptyPayload); got != tt.empty {
				t.Errorf("errors.Is(ErrEmptyPayload) = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestActiveAreas(t *testing.T) {
	rows, err := DecodeRows[DeliveryAreaRow](deliveryAreasPayload)
	if err != nil {
		t.Fatal(err)
	}

	active := ActiveAreas(rows)
	if len(active) != 1 || active[0].AreaCode != "DK1" {
		t.Errorf("ActiveAreas() = %+v", active)
	}
}
