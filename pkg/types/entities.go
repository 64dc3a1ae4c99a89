package types

import "time"

type OrderStatus string

const (
	OrderUnassigned OrderStatus = "UNASSIGNED"
	OrderAssigned   OrderStatus = "ASSIGNED"
	OrderDelivered  OrderStatus = "DELIVERED"
)

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleInTransit   VehicleStatus = "IN_TRANSIT"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
)

type DriverStatus string

const (
	DriverAvailable DriverStatus = "AVAILABLE"
	DriverOnRoute   DriverStatus = "ON_ROUTE"
	DriverOffDuty   DriverStatus = "OFF_DUTY"
)

type Role string

const (
	RoleDispatcher Role = "DISPATCHER"
	RoleDriver     Role = "DRIVER"
)

// Order is a delivery order as the backend reports it. Coordinates are
// pointers because the backend omits them, or sends null, while an address
// is still being geocoded.
type Order struct {
	ID                 string      `json:"id"`
	OrganizationID     string      `json:"organizationId"`
	WeightKg           float64     `json:"weightKg"`
	ServiceDurationMin int         `json:"serviceDurationMin"`
	Latitude           *float64    `json:"latitude,omitempty"`
	Longitude          *float64    `json:"longitude,omitempty"`
	Address            string      `json:"address,omitempty"`
	Status             OrderStatus `json:"status"`
	RouteID            string      `json:"routeId,omitempty"`
}

// EffectiveStatus defaults absent statuses to UNASSIGNED.
func (o Order) EffectiveStatus() OrderStatus {
	if o.Status == "" {
		return OrderUnassigned
	}
	return o.Status
}

// HasCoordinates reports whether both coordinates are present and finite.
func (o Order) HasCoordinates() bool {
	return isFinite(o.Latitude) && isFinite(o.Longitude)
}

type Vehicle struct {
	ID                string        `json:"id"`
	OrganizationID    string        `json:"organizationId"`
	Name              string        `json:"name"`
	CapacityKg        float64       `json:"capacityKg"`
	StartLat          float64       `json:"startLat"`
	StartLon          float64       `json:"startLon"`
	StartShiftMinutes int           `json:"startShiftMinutes"`
	EndShiftMinutes   int           `json:"endShiftMinutes"`
	Address           string        `json:"address,omitempty"`
	Status            VehicleStatus `json:"status,omitempty"`
}

// EffectiveStatus defaults absent statuses to AVAILABLE.
func (v Vehicle) EffectiveStatus() VehicleStatus {
	if v.Status == "" {
		return VehicleAvailable
	}
	return v.Status
}

// Route holds an ordered stop sequence. The backend exposes the sequence
// under either "stops" or "orders"; StopList applies the preference rule.
type Route struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organizationId"`
	VehicleID      string      `json:"vehicleId,omitempty"`
	Vehicle        *Vehicle    `json:"vehicle,omitempty"`
	Status         string      `json:"status"`
	Stops          []RouteStop `json:"stops,omitempty"`
	Orders         []RouteStop `json:"orders,omitempty"`
}

// StopList returns the route's ordered stops, preferring the stops field
// and falling back to orders. Downstream consumers rely on this exact
// fallback order.
func (r Route) StopList() []RouteStop {
	if len(r.Stops) > 0 {
		return r.Stops
	}
	return r.Orders
}

type Driver struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Email             string       `json:"email,omitempty"`
	LicenseID         string       `json:"licenseId"`
	Phone             string       `json:"phone"`
	HomeBase          string       `json:"homeBase"`
	Status            DriverStatus `json:"status"`
	AssignedVehicle   *Vehicle     `json:"assignedVehicle,omitempty"`
	AssignedVehicleID string       `json:"assignedVehicleId,omitempty"`
	LastCheckIn       *time.Time   `json:"lastCheckIn,omitempty"`
}

type AccountProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	FullName    string     `json:"fullName,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// DriverRoute is the backend's driver-scoped route view.
type DriverRoute struct {
	DriverName                string            `json:"driverName"`
	VehicleName               string            `json:"vehicleName"`
	RouteStatus               string            `json:"routeStatus"`
	EstimatedRemainingMinutes *int              `json:"estimatedRemainingMinutes,omitempty"`
	Stops                     []DriverRouteStop `json:"stops"`
}

type DriverRouteStop struct {
	ID                 string      `json:"id"`
	Address            string      `json:"address,omitempty"`
	Latitude           *float64    `json:"latitude,omitempty"`
	Longitude          *float64    `json:"longitude,omitempty"`
	Status             OrderStatus `json:"status"`
	ServiceDurationMin int         `json:"serviceDurationMin,omitempty"`
}
