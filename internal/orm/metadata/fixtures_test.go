package metadata

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

type Vehicle struct {
	source.Abstract
	Id    int64
	Brand string
}

type Car struct {
	Vehicle
	Doors int
}

type SportsCar struct {
	Car
	TopSpeed *int
}

type Driver struct {
	Id       int64
	Code     string
	Nickname *string
	Cars     []Car
	Garage   []*Garage `rel:"table=driver_garages,inverse=Drivers"`
	Mentors  []Driver
}

type Garage struct {
	Id      int64
	Drivers []Driver `rel:"table=garage_drivers"`
}

type Team struct {
	Id      int64
	Members []*Player
}

type Player struct {
	Id    int64
	Teams []Team
}

type Loop struct {
	*Loop
	Id int64
}

type Ticket struct {
	Id       int32
	DriverId sql.NullInt64
	CarId    int64
}

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

// newTestModel creates a model without conventions
func newTestModel() *Model {
	return NewModel()
}

func addEntity[T any](t *testing.T, m *Model) *Entity {
	t.Helper()
	e, err := m.AddEntity(reflect.TypeFor[T](), false)
	require.NoError(t, err)
	return e
}

func addProperty(t *testing.T, e *Entity, name string) *Property {
	t.Helper()
	member, ok := e.TypeInfo().Member(name)
	require.True(t, ok, "member %s not found on %s", name, e.Name())
	p, err := e.AddProperty(member, true)
	require.NoError(t, err)
	return p
}

func member(t *testing.T, e *Entity, name string) *source.Member {
	t.Helper()
	m, ok := e.TypeInfo().Member(name)
	require.True(t, ok, "member %s not found on %s", name, e.Name())
	return m
}

// keyed adds entity T with property Id as primary key
func keyed[T any](t *testing.T, m *Model) *Entity {
	t.Helper()
	e := addEntity[T](t, m)
	_, err := e.SetPrimaryKey([]*Property{addProperty(t, e, "Id")})
	require.NoError(t, err)
	return e
}

func names[T interface{ Name() string }](items []T) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Name()
	}
	return result
}
