package metadata

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleHierarchy(t *testing.T, m *Model) (vehicle, car, sports *Entity) {
	t.Helper()
	vehicle = addEntity[Vehicle](t, m)
	car = addEntity[Car](t, m)
	sports = addEntity[SportsCar](t, m)
	require.NoError(t, car.TrySetBaseType(vehicle))
	require.NoError(t, sports.TrySetBaseType(car))
	return vehicle, car, sports
}

func TestEntity_TrySetBaseType(t *testing.T) {
	m := newTestModel()
	vehicle, car, sports := vehicleHierarchy(t, m)

	assert.Same(t, vehicle, car.BaseType())
	assert.Same(t, vehicle, sports.Root())
	assert.True(t, vehicle.IsAbstract())
	assert.False(t, car.IsAbstract())
	assert.True(t, vehicle.IsAssignableFrom(sports))
	assert.False(t, sports.IsAssignableFrom(vehicle))

	assert.Equal(t, []string{"Car"}, names(vehicle.GetDirectlyDerivedEntities()))
	assert.Equal(t, []string{"Car", "SportsCar"}, names(vehicle.GetDerivedEntities()))

	t.Run("same base is a no-op", func(t *testing.T) {
		assert.NoError(t, car.TrySetBaseType(vehicle))
		assert.Len(t, vehicle.GetDirectlyDerivedEntities(), 1)
	})

	t.Run("different base", func(t *testing.T) {
		driver := addEntity[Driver](t, m)
		err := car.TrySetBaseType(driver)
		assert.ErrorIs(t, err, ErrBaseTypeAlreadyDefined)
	})

	t.Run("cycle", func(t *testing.T) {
		assert.ErrorIs(t, vehicle.TrySetBaseType(sports), ErrCircularInheritance)
		assert.Nil(t, vehicle.BaseType())
	})

	t.Run("nil base", func(t *testing.T) {
		assert.ErrorIs(t, car.TrySetBaseType(nil), ErrArgumentNull)
	})
}

func TestEntity_BaseEntitySetConventionRuns(t *testing.T) {
	var seen []string
	m := NewModel(WithConventions(&ConventionSet{
		BaseEntitySet: []Convention[*Entity]{{
			Name: "record",
			Apply: func(e *Entity) (Result[*Entity], error) {
				seen = append(seen, e.Name()+"<"+e.BaseType().Name())
				return Continue(e), nil
			},
		}},
	}))
	vehicleHierarchy(t, m)
	assert.Equal(t, []string{"Car<Vehicle", "SportsCar<Car"}, seen)
}

func TestEntity_PropertiesOrderedPrimaryKeyFirst(t *testing.T) {
	m := newTestModel()
	driver := addEntity[Driver](t, m)

	addProperty(t, driver, "Nickname")
	addProperty(t, driver, "Code")
	id := addProperty(t, driver, "Id")
	assert.Equal(t, []string{"Code", "Id", "Nickname"}, names(driver.GetDeclaredProperties()))

	pk, err := driver.SetPrimaryKey([]*Property{id})
	require.NoError(t, err)
	assert.True(t, pk.IsPrimaryKey())
	assert.True(t, id.IsPrimaryKey())
	assert.True(t, id.IsKey())
	assert.Equal(t, []string{"Id", "Code", "Nickname"}, names(driver.GetDeclaredProperties()))

	assert.Same(t, id, driver.FindProperty("Id"))
	assert.Nil(t, driver.FindProperty("Missing"))
	assert.False(t, id.IsShadow())
	assert.True(t, driver.FindProperty("Nickname").IsNullable())
}

func TestEntity_InheritedProperties(t *testing.T) {
	m := newTestModel()
	vehicle, car, sports := vehicleHierarchy(t, m)

	brand := addProperty(t, vehicle, "Brand")
	addProperty(t, car, "Doors")
	speed := addProperty(t, sports, "TopSpeed")

	assert.Same(t, brand, sports.FindProperty("Brand"))
	assert.Nil(t, sports.FindDeclaredProperty("Brand"))
	assert.Equal(t, []string{"Brand", "Doors", "TopSpeed"}, names(sports.GetProperties()))
	assert.Equal(t, []*Property{speed}, vehicle.FindDerivedProperties("TopSpeed"))
	assert.Len(t, car.FindPropertiesInHierarchy("TopSpeed"), 1)

	t.Run("duplicate in base", func(t *testing.T) {
		_, err := car.AddProperty(member(t, car, "Brand"), true)
		var merr *MetadataError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, CodeDuplicateProperty, merr.Code)
		assert.Equal(t, "Car", merr.Entity)
	})

	t.Run("duplicate in derived", func(t *testing.T) {
		_, err := vehicle.AddShadowProperty("TopSpeed", reflect.TypeFor[int](), false)
		assert.ErrorIs(t, err, ErrDuplicateProperty)
	})

	t.Run("get or add returns inherited", func(t *testing.T) {
		p, err := sports.GetOrAddProperty(member(t, sports, "Brand"))
		require.NoError(t, err)
		assert.Same(t, brand, p)
	})
}

func TestEntity_AddShadowProperty(t *testing.T) {
	m := newTestModel()
	driver := addEntity[Driver](t, m)

	p, err := driver.AddShadowProperty("Version", reflect.TypeFor[int64](), true)
	require.NoError(t, err)
	assert.True(t, p.IsShadow())
	assert.Nil(t, p.Member())

	_, err = driver.AddShadowProperty("", reflect.TypeFor[int64](), true)
	assert.ErrorIs(t, err, ErrArgumentEmpty)
	_, err = driver.AddShadowProperty("Other", nil, true)
	assert.ErrorIs(t, err, ErrArgumentNull)
}

func TestEntity_Keys(t *testing.T) {
	m := newTestModel()
	driver := keyed[Driver](t, m)
	code := addProperty(t, driver, "Code")

	ak, err := driver.AddKey([]*Property{code})
	require.NoError(t, err)
	assert.False(t, ak.IsPrimaryKey())
	assert.Same(t, driver, ak.DeclaringEntity())
	assert.Equal(t, []*Key{ak, driver.FindPrimaryKey()}, driver.GetDeclaredKeys())

	got, err := driver.GetOrAddKey([]*Property{code})
	require.NoError(t, err)
	assert.Same(t, ak, got)

	_, err = driver.AddKey([]*Property{code})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = driver.AddKey([]*Property{addProperty(t, driver, "Nickname")})
	assert.ErrorIs(t, err, ErrNullableKey)

	_, err = driver.AddKey(nil)
	assert.ErrorIs(t, err, ErrArgumentEmpty)
	_, err = driver.AddKey([]*Property{nil})
	assert.ErrorIs(t, err, ErrArgumentNull)

	garage := keyed[Garage](t, m)
	_, err = driver.AddKey(garage.FindPrimaryKey().Properties())
	assert.ErrorIs(t, err, ErrKeyPropertiesWrongEntity)

	_, err = driver.SetPrimaryKey([]*Property{code})
	assert.ErrorIs(t, err, ErrPrimaryKeyAlreadyExists)
}

func TestEntity_KeysOnDerivedEntity(t *testing.T) {
	m := newTestModel()
	vehicle, car, sports := vehicleHierarchy(t, m)

	id := addProperty(t, vehicle, "Id")
	pk, err := vehicle.SetPrimaryKey([]*Property{id})
	require.NoError(t, err)

	assert.Same(t, pk, sports.FindPrimaryKey())
	assert.Nil(t, sports.FindDeclaredPrimaryKey())
	assert.Equal(t, []*Key{pk}, car.GetKeys())

	doors := addProperty(t, car, "Doors")
	_, err = car.SetPrimaryKey([]*Property{doors})
	assert.ErrorIs(t, err, ErrDerivedEntityKey)
	_, err = car.AddKey([]*Property{doors})
	assert.ErrorIs(t, err, ErrDerivedEntityKey)
}

func TestEntity_KeyConventionErrorRemovesKey(t *testing.T) {
	failing := errors.New("rejected")
	m := NewModel(WithConventions(&ConventionSet{
		KeyAdded: []Convention[*Key]{{
			Name: "reject",
			Apply: func(k *Key) (Result[*Key], error) {
				return Result[*Key]{}, failing
			},
		}},
	}))
	driver := addEntity[Driver](t, m)
	code := addProperty(t, driver, "Code")

	k, err := driver.AddKey([]*Property{code})
	require.ErrorIs(t, err, failing)
	assert.Nil(t, k)
	assert.Empty(t, driver.GetDeclaredKeys())
	assert.Empty(t, code.Keys())
	assert.False(t, code.IsKey())

	_, err = driver.SetPrimaryKey([]*Property{code})
	require.ErrorIs(t, err, failing)
	assert.Nil(t, driver.FindPrimaryKey())
	assert.False(t, code.IsPrimaryKey())
	assert.Empty(t, driver.GetDeclaredKeys())
}

func TestEntity_PrimaryKeyConventionErrorClearsPrimaryKey(t *testing.T) {
	failing := errors.New("rejected")
	reject := true
	m := NewModel(WithConventions(&ConventionSet{
		PrimaryKeySet: []Convention[*Key]{{
			Name: "reject",
			Apply: func(k *Key) (Result[*Key], error) {
				if reject {
					return Result[*Key]{}, failing
				}
				return Continue(k), nil
			},
		}},
	}))
	driver := addEntity[Driver](t, m)
	code := addProperty(t, driver, "Code")
	id := addProperty(t, driver, "Id")

	t.Run("new key is removed", func(t *testing.T) {
		_, err := driver.SetPrimaryKey([]*Property{id})
		require.ErrorIs(t, err, failing)
		assert.Nil(t, driver.FindPrimaryKey())
		assert.False(t, id.IsPrimaryKey())
		assert.Empty(t, id.Keys())
		assert.Empty(t, driver.GetDeclaredKeys())
		assert.Equal(t, []string{"Code", "Id"}, names(driver.GetDeclaredProperties()))
	})

	t.Run("existing alternate key is kept", func(t *testing.T) {
		ak, err := driver.AddKey([]*Property{code})
		require.NoError(t, err)

		_, err = driver.SetPrimaryKey([]*Property{code})
		require.ErrorIs(t, err, failing)
		assert.Nil(t, driver.FindPrimaryKey())
		assert.False(t, ak.IsPrimaryKey())
		assert.Equal(t, []*Key{ak}, driver.GetDeclaredKeys())
	})

	t.Run("primary key can be set after a failure", func(t *testing.T) {
		reject = false
		pk, err := driver.SetPrimaryKey([]*Property{id})
		require.NoError(t, err)
		assert.Same(t, pk, driver.FindPrimaryKey())
		assert.Equal(t, []string{"Id", "Code"}, names(driver.GetDeclaredProperties()))
	})
}

func TestEntity_PrimaryKeySetConventionRuns(t *testing.T) {
	var keys []string
	m := NewModel(WithConventions(&ConventionSet{
		PrimaryKeySet: []Convention[*Key]{{
			Name: "record",
			Apply: func(k *Key) (Result[*Key], error) {
				keys = append(keys, k.DeclaringEntity().Name())
				return Continue(k), nil
			},
		}},
	}))
	e, err := m.AddEntity(typeOf[Garage](), false)
	require.NoError(t, err)
	p, err := e.AddProperty(member(t, e, "Id"), false)
	require.NoError(t, err)
	_, err = e.SetPrimaryKey([]*Property{p})
	require.NoError(t, err)
	assert.Equal(t, []string{"Garage"}, keys)
}

func TestEntity_ForeignKeys(t *testing.T) {
	m := newTestModel()
	driver := keyed[Driver](t, m)
	ticket := addEntity[Ticket](t, m)
	driverID := addProperty(t, ticket, "DriverId")
	pk := driver.FindPrimaryKey()

	fk, err := ticket.AddForeignKey([]*Property{driverID}, pk, driver, true)
	require.NoError(t, err)

	assert.Same(t, ticket, fk.DeclaringEntity())
	assert.Same(t, driver, fk.PrincipalEntity())
	assert.Same(t, pk, fk.PrincipalKey())
	assert.False(t, fk.IsSelfReferencing())
	assert.True(t, driverID.IsForeignKey())
	assert.Equal(t, []*ForeignKey{fk}, pk.ReferencingForeignKeys())
	assert.Equal(t, []*ForeignKey{fk}, driver.GetDeclaredReferencingForeignKeys())
	assert.Same(t, fk, ticket.FindForeignKey([]*Property{driverID}, pk, driver))
	assert.Equal(t, []*ForeignKey{fk}, ticket.FindDeclaredForeignKeys([]*Property{driverID}))

	t.Run("duplicate", func(t *testing.T) {
		_, err := ticket.AddForeignKey([]*Property{driverID}, pk, driver, true)
		assert.ErrorIs(t, err, ErrDuplicateForeignKey)
	})

	t.Run("type mismatch", func(t *testing.T) {
		id := addProperty(t, ticket, "Id")
		_, err := ticket.AddForeignKey([]*Property{id}, pk, driver, true)
		assert.ErrorIs(t, err, ErrForeignKeyTypeMismatch)
	})

	t.Run("count mismatch", func(t *testing.T) {
		carID := addProperty(t, ticket, "CarId")
		_, err := ticket.AddForeignKey([]*Property{driverID, carID}, pk, driver, true)
		assert.ErrorIs(t, err, ErrForeignKeyCountMismatch)
	})

	t.Run("property of another entity", func(t *testing.T) {
		code := addProperty(t, driver, "Code")
		_, err := ticket.AddForeignKey([]*Property{code}, pk, driver, true)
		assert.ErrorIs(t, err, ErrForeignKeyPropertiesWrongEntity)
	})

	t.Run("key outside principal entity", func(t *testing.T) {
		garage := keyed[Garage](t, m)
		carID := ticket.FindProperty("CarId")
		_, err := ticket.AddForeignKey([]*Property{carID}, pk, garage, true)
		assert.ErrorIs(t, err, ErrForeignKeyReferencedEntityKey)
	})
}

func TestEntity_SelfReferencingForeignKey(t *testing.T) {
	m := newTestModel()
	driver := keyed[Driver](t, m)
	mentor, err := driver.AddShadowProperty("MentorId", reflect.TypeFor[int64](), false)
	require.NoError(t, err)

	fk, err := driver.AddForeignKey([]*Property{mentor}, driver.FindPrimaryKey(), driver, false)
	require.NoError(t, err)
	assert.True(t, fk.IsSelfReferencing())
}

func TestAreCompatible(t *testing.T) {
	m := newTestModel()
	ticket := addEntity[Ticket](t, m)
	id := addProperty(t, ticket, "Id")
	driverID := addProperty(t, ticket, "DriverId")
	carID := addProperty(t, ticket, "CarId")

	assert.True(t, AreCompatible([]*Property{carID}, []*Property{driverID}))
	assert.False(t, AreCompatible([]*Property{carID}, []*Property{id}))
	assert.False(t, AreCompatible([]*Property{carID}, []*Property{driverID, id}))
	assert.False(t, AreCompatible([]*Property{carID}, []*Property{nil}))
}

func TestEntity_Indexes(t *testing.T) {
	m := newTestModel()
	vehicle, car, _ := vehicleHierarchy(t, m)
	brand := addProperty(t, vehicle, "Brand")

	ix, err := car.AddIndex([]*Property{brand}, true)
	require.NoError(t, err)
	assert.True(t, ix.IsUnique())
	assert.Same(t, car, ix.DeclaringEntity())
	assert.Equal(t, []*Index{ix}, brand.Indexes())

	_, err = car.AddIndex([]*Property{brand}, false)
	assert.ErrorIs(t, err, ErrDuplicateIndex)

	_, err = vehicle.AddIndex([]*Property{brand}, false)
	assert.ErrorIs(t, err, ErrDuplicateIndex)

	driver := addEntity[Driver](t, m)
	_, err = driver.AddIndex([]*Property{brand}, false)
	assert.ErrorIs(t, err, ErrKeyPropertiesWrongEntity)
}
