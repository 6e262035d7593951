// Package directory supplies the read-only list of marketplace users offered
// when starting a new chat.
package directory

import (
	"context"
	"os"
	"strings"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	"github.com/mcnijman/go-emailaddress"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Provider interface {
	Users(ctx context.Context) ([]models.User, error)
	User(ctx context.Context, id string) (models.User, error)
}

// StaticProvider serves a fixed set of users, in seed order.
type StaticProvider struct {
	users []models.User
	byID  map[string]int
}

func NewStaticProvider(users []models.User) *StaticProvider {
	p := &StaticProvider{
		users: append([]models.User(nil), users...),
		byID:  make(map[string]int, len(users)),
	}
	for i, u := range p.users {
		p.byID[u.ID] = i
	}
	return p
}

func (p *StaticProvider) Users(ctx context.Context) ([]models.User, error) {
	return append([]models.User(nil), p.users...), nil
}

func (p *StaticProvider) User(ctx context.Context, id string) (models.User, error) {
	i, ok := p.byID[id]
	if !ok {
		return models.User{}, apperrors.NotFound("user", id)
	}
	return p.users[i], nil
}

// Filter returns the users whose name or email contains query
// (case-insensitive) and whose type equals userType. An empty query or type
// matches everything. The user with excludeID is never returned.
func Filter(users []models.User, query string, userType models.UserType, excludeID string) []models.User {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := []models.User{}
	for _, u := range users {
		if u.ID == excludeID {
			continue
		}
		if userType != "" && u.Type != userType {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// record is the seed-file shape of a user. Only the section matching Type is
// read into the user's profile.
type record struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Email           string  `yaml:"email"`
	Phone           string  `yaml:"phone"`
	Avatar          string  `yaml:"avatar"`
	Type            string  `yaml:"type"`
	Rating          float64 `yaml:"rating"`
	TotalRatings    int     `yaml:"total_ratings"`
	ProfileComplete bool    `yaml:"profile_complete"`

	Shipper *struct {
		CompanyName string         `yaml:"company_name"`
		Document    string         `yaml:"document"`
		Address     models.Address `yaml:"address"`
	} `yaml:"shipper"`
	Carrier *struct {
		Document        string         `yaml:"document"`
		LicenseCategory string         `yaml:"license_category"`
		Vehicle         models.Vehicle `yaml:"vehicle"`
	} `yaml:"carrier"`
	Fleet *struct {
		CompanyName string           `yaml:"company_name"`
		Document    string           `yaml:"document"`
		FleetSize   int              `yaml:"fleet_size"`
		Vehicles    []models.Vehicle `yaml:"vehicles"`
	} `yaml:"fleet"`
}

func (r record) toUser() (models.User, error) {
	u := models.User{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Avatar:          r.Avatar,
		Type:            models.UserType(r.Type),
		Rating:          r.Rating,
		TotalRatings:    r.TotalRatings,
		ProfileComplete: r.ProfileComplete,
	}

	if u.ID == "" {
		return models.User{}, apperrors.Validation("user %q has no id", u.Name)
	}
	if !u.Type.Valid() {
		return models.User{}, apperrors.Validation("user %s has unknown type %q", u.ID, r.Type)
	}
	if u.Email != "" {
		if _, err := emailaddress.Parse(u.Email); err != nil {
			return models.User{}, apperrors.Validation("user %s has an invalid email address: %s", u.ID, err.Error())
		}
	}

	switch u.Type {
	case models.UserTypeShipper:
		if r.Shipper != nil {
			u.Profile = models.ShipperProfile{CompanyName: r.Shipper.CompanyName, Document: r.Shipper.Document, Address: r.Shipper.Address}
		}
	case models.UserTypeCarrier:
		if r.Carrier != nil {
			u.Profile = models.CarrierProfile{Document: r.Carrier.Document, LicenseCategory: r.Carrier.LicenseCategory, Vehicle: r.Carrier.Vehicle}
		}
	case models.UserTypeFleet:
		if r.Fleet != nil {
			u.Profile = models.FleetProfile{CompanyName: r.Fleet.CompanyName, Document: r.Fleet.Document, FleetSize: r.Fleet.FleetSize, Vehicles: r.Fleet.Vehicles}
		}
	}
	return u, nil
}

// Parse decodes a YAML seed document of the form `users: [...]`.
func Parse(data []byte) ([]models.User, error) {
	var doc struct {
		Users []record `yaml:"users"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "unable to parse user directory")
	}

	users := make([]models.User, 0, len(doc.Users))
	seen := make(map[string]bool, len(doc.Users))
	for _, r := range doc.Users {
		u, err := r.toUser()
		if err != nil {
			return nil, err
		}
		if seen[u.ID] {
			return nil, apperrors.Validation("duplicate user id %s", u.ID)
		}
		seen[u.ID] = true
		users = append(users, u)
	}
	return users, nil
}

// LoadFile builds a StaticProvider from a YAML seed file.
func LoadFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read user directory %s", path)
	}
	users, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewStaticProvider(users), nil
}
