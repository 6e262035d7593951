package models

type UserType string

const (
	UserTypeShipper UserType = "embarcador"
	UserTypeCarrier UserType = "transportador"
	UserTypeFleet   UserType = "transportadora"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeShipper, UserTypeCarrier, UserTypeFleet:
		return true
	}
	return false
}

type User struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Avatar          string   `json:"avatar,omitempty"`
	Type            UserType `json:"type"`
	Rating          float64  `json:"rating"`
	TotalRatings    int      `json:"total_ratings"`
	ProfileComplete bool     `json:"profile_complete"`
	Profile         Profile  `json:"profile,omitempty"`
}

// Profile holds the subtype-specific part of a user. Exactly one of
// ShipperProfile, CarrierProfile or FleetProfile.
type Profile interface {
	UserType() UserType
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code,omitempty" yaml:"zip_code"`
}

type Vehicle struct {
	Kind     string  `json:"kind"`
	Plate    string  `json:"plate"`
	Capacity float64 `json:"capacity"`
}

type ShipperProfile struct {
	CompanyName string  `json:"company_name"`
	Document    string  `json:"document"`
	Address     Address `json:"address"`
}

func (ShipperProfile) UserType() UserType { return UserTypeShipper }

type CarrierProfile struct {
	Document        string  `json:"document"`
	LicenseCategory string  `json:"license_category"`
	Vehicle         Vehicle `json:"vehicle"`
}

func (CarrierProfile) UserType() UserType { return UserTypeCarrier }

type FleetProfile struct {
	CompanyName string    `json:"company_name"`
	Document    string    `json:"document"`
	FleetSize   int       `json:"fleet_size"`
	Vehicles    []Vehicle `json:"vehicles"`
}

func (FleetProfile) UserType() UserType { return UserTypeFleet }

func (u User) Shipper() (ShipperProfile, bool) {
	p, ok := u.Profile.(ShipperProfile)
	return p, ok
}

func (u User) Carrier() (CarrierProfile, bool) {
	p, ok := u.Profile.(CarrierProfile)
	return p, ok
}

func (u User) Fleet() (FleetProfile, bool) {
	p, ok := u.Profile.(FleetProfile)
	return p, ok
}

// Clone copies u including the vehicle list of a fleet profile.
func (u User) Clone() User {
	if fleet, ok := u.Profile.(FleetProfile); ok {
		fleet.Vehicles = append([]Vehicle(nil), fleet.Vehicles...)
		u.Profile = fleet
	}
	return u
}
