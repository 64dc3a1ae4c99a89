package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RouteStop is the polymorphic stop value the backend embeds in routes: a
// bare order id string, a partial record with any of {id, orderId,
// latitude, longitude}, or a full order payload. Decoding flattens all
// three forms into one tagged record; resolution against the order set is
// the geometry package's job.
type RouteStop struct {
	ID        string
	OrderID   string
	Latitude  *float64
	Longitude *float64

	// Order is set when the payload carried a full order record.
	Order *Order
}

// HasInlineCoordinates reports whether the stop carries a usable coordinate
// pair of its own. Non-finite values are treated as absent.
func (s RouteStop) HasInlineCoordinates() bool {
	return isFinite(s.Latitude) && isFinite(s.Longitude)
}

// Key returns the identifier used to match the stop to an order when
// flipping assignment status: id when set, else orderId.
func (s RouteStop) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.OrderID
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

type routeStopRecord struct {
	ID        json.RawMessage `json:"id,omitempty"`
	OrderID   json.RawMessage `json:"orderId,omitempty"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`

	// Present only on full order payloads.
	OrganizationID     *string  `json:"organizationId,omitempty"`
	WeightKg           *float64 `json:"weightKg,omitempty"`
	ServiceDurationMin *int     `json:"serviceDurationMin,omitempty"`
	Address            *string  `json:"address,omitempty"`
	Status             *string  `json:"status,omitempty"`
	RouteID            *string  `json:"routeId,omitempty"`
}

func (s *RouteStop) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		*s = RouteStop{ID: ref}
		return nil
	}

	var record routeStopRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("route stop: %w", err)
	}

	*s = RouteStop{
		ID:        flexibleID(record.ID),
		OrderID:   flexibleID(record.OrderID),
		Latitude:  record.Latitude,
		Longitude: record.Longitude,
	}

	if record.WeightKg != nil || record.OrganizationID != nil || record.Status != nil {
		order := Order{ID: s.ID}
		if record.OrganizationID != nil {
			order.OrganizationID = *record.OrganizationID
		}
		if record.WeightKg != nil {
			order.WeightKg = *record.WeightKg
		}
		if record.ServiceDurationMin != nil {
			order.ServiceDurationMin = *record.ServiceDurationMin
		}
		order.Latitude = record.Latitude
		order.Longitude = record.Longitude
		if record.Address != nil {
			order.Address = *record.Address
		}
		if record.Status != nil {
			order.Status = OrderStatus(*record.Status)
		}
		if record.RouteID != nil {
			order.RouteID = *record.RouteID
		}
		s.Order = &order
	}

	return nil
}

func (s RouteStop) MarshalJSON() ([]byte, error) {
	if s.Order != nil {
		return json.Marshal(s.Order)
	}
	if s.ID != "" && s.OrderID == "" && s.Latitude == nil && s.Longitude == nil {
		return json.Marshal(s.ID)
	}
	record := map[string]any{}
	if s.ID != "" {
		record["id"] = s.ID
	}
	if s.OrderID != "" {
		record["orderId"] = s.OrderID
	}
	if s.Latitude != nil {
		record["latitude"] = *s.Latitude
	}
	if s.Longitude != nil {
		record["longitude"] = *s.Longitude
	}
	return json.Marshal(record)
}

// flexibleID accepts string or numeric identifiers and stringifies both.
func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		return strconv.FormatFloat(asFloat, 'f', -1, 64)
	}
	return ""
}
