package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cargahub/messaging-service/internal/apperrors"
	"cargahub/messaging-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
users:
  - id: s1
    name: Ana Souza
    email: ana@agro.com.br
    type: embarcador
    rating: 4.8
    shipper:
      company_name: Agro Sul
      document: "12.345.678/0001-90"
      address: {city: Curitiba, state: PR}
  - id: c1
    name: Bruno Lima
    email: bruno@example.com
    type: transportador
    carrier:
      license_category: E
      vehicle: {kind: carreta, plate: ABC1D23, capacity: 30}
  - id: f1
    name: Rodo Express
    email: contato@rodoexpress.com.br
    type: transportadora
    fleet:
      company_name: Rodo Express Ltda
      fleet_size: 12
`

func TestParseTaggedProfiles(t *testing.T) {
	users, err := Parse([]byte(seed))
	require.NoError(t, err)
	require.Len(t, users, 3)

	shipper, ok := users[0].Shipper()
	require.True(t, ok)
	assert.Equal(t, "Agro Sul", shipper.CompanyName)
	assert.Equal(t, "Curitiba", shipper.Address.City)
	_, ok = users[0].Carrier()
	assert.False(t, ok, "a shipper carries no carrier fields")

	carrier, ok := users[1].Carrier()
	require.True(t, ok)
	assert.Equal(t, "ABC1D23", carrier.Vehicle.Plate)

	fleet, ok := users[2].Fleet()
	require.True(t, ok)
	assert.Equal(t, 12, fleet.FleetSize)
}

func TestParseRejectsInvalidRecords(t *testing.T) {
	_, err := Parse([]byte("users:\n  - {id: x, name: X, type: pilot}\n"))
	assert.True(t, apperrors.IsValidation(err))

	_, err = Parse([]byte("users:\n  - {id: x, name: X, type: embarcador, email: not-an-email}\n"))
	assert.True(t, apperrors.IsValidation(err))

	_, err = Parse([]byte("users:\n  - {id: x, name: X, type: embarcador}\n  - {id: x, name: Y, type: embarcador}\n"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestFilter(t *testing.T) {
	users, err := Parse([]byte(seed))
	require.NoError(t, err)

	byName := Filter(users, "bRUno", "", "")
	require.Len(t, byName, 1)
	assert.Equal(t, "c1", byName[0].ID)

	byEmail := Filter(users, "rodoexpress", "", "")
	require.Len(t, byEmail, 1)
	assert.Equal(t, "f1", byEmail[0].ID)

	byType := Filter(users, "", models.UserTypeShipper, "")
	require.Len(t, byType, 1)
	assert.Equal(t, "s1", byType[0].ID)

	assert.Len(t, Filter(users, "", "", "s1"), 2, "the excluded user is never listed")
	assert.Empty(t, Filter(users, "zzz", "", ""))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	provider, err := LoadFile(path)
	require.NoError(t, err)

	user, err := provider.User(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Bruno Lima", user.Name)

	_, err = provider.User(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFound(err))

	all, err := provider.Users(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
