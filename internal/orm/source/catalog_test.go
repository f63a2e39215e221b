package source

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Animal struct {
	Abstract
	ID   uuid.UUID
	Name string
}

type Dog struct {
	Animal
	Breed   *string
	Owner   *Person
	Friends []Dog `rel:"table=dog_friends,inverse=FriendOf"`
	Kennel  Kennel
	secret  int
	Skipped int `model:"-"`
}

type Person struct {
	ID      int64
	Dogs    []*Dog `model:"readonly"`
	Partner *Person `model:"readonly"`
	Born    sql.NullTime
}

type Kennel struct {
	Address string
}

type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Note struct {
	Animal
	Timestamps
	Body string
}

type SelfNode struct {
	*SelfNode
	ID int64
}

type Chain struct {
	*Link
	ID int64
}

type Link struct {
	*Chain
	Label string
}

type Shadowing struct {
	Animal
	Name int
}

func TestCatalog_Describe(t *testing.T) {
	c := NewCatalog()

	info, err := c.Describe(reflect.TypeFor[*Dog]())
	require.NoError(t, err)

	assert.Equal(t, "Dog", info.Name)
	assert.Equal(t, reflect.TypeFor[Animal](), info.Base)
	assert.False(t, info.Abstract)

	var own []string
	for _, m := range info.Own {
		own = append(own, m.Name)
	}
	assert.Equal(t, []string{"Breed", "Owner", "Friends", "Kennel"}, own)

	var all []string
	for _, m := range info.Members {
		all = append(all, m.Name)
	}
	assert.Equal(t, []string{"ID", "Name", "Breed", "Owner", "Friends", "Kennel"}, all)

	id, ok := info.Member("ID")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Animal](), id.DeclaringType)
	assert.Equal(t, []int{0, 1}, id.Index)

	friends, ok := info.Member("Friends")
	require.True(t, ok)
	require.NotNil(t, friends.Hint)
	assert.Equal(t, "dog_friends", friends.Hint.AssociationTable)
	assert.Equal(t, "FriendOf", friends.Hint.InverseProperty)

	again, err := c.Describe(reflect.TypeFor[Dog]())
	require.NoError(t, err)
	assert.Same(t, info, again)
}

func TestCatalog_Abstract(t *testing.T) {
	info, err := NewCatalog().Describe(reflect.TypeFor[Animal]())
	require.NoError(t, err)

	assert.True(t, info.Abstract)
	assert.Nil(t, info.Base)
	assert.Len(t, info.Own, 2)
}

func TestCatalog_MixinFieldsAreOwn(t *testing.T) {
	info, err := NewCatalog().Describe(reflect.TypeFor[Note]())
	require.NoError(t, err)

	assert.Equal(t, reflect.TypeFor[Animal](), info.Base)
	var names []string
	for _, m := range info.Own {
		names = append(names, m.Name)
		assert.Equal(t, reflect.TypeFor[Note](), m.DeclaringType)
	}
	assert.Equal(t, []string{"CreatedAt", "UpdatedAt", "Body"}, names)
	assert.Len(t, info.Members, 5)
}

func TestCatalog_ShadowedBaseMember(t *testing.T) {
	info, err := NewCatalog().Describe(reflect.TypeFor[Shadowing]())
	require.NoError(t, err)

	name, ok := info.Member("Name")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[int](), name.Type)
	assert.Len(t, info.Members, 2)
}

func TestCatalog_RejectsNonEntityTypes(t *testing.T) {
	c := NewCatalog()

	for _, typ := range []reflect.Type{
		reflect.TypeFor[int](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[struct{ A int }](),
		reflect.TypeFor[Abstract](),
	} {
		_, err := c.Describe(typ)
		assert.ErrorIs(t, err, ErrNotEntityType, typ.String())
	}
}

func TestCatalog_CircularBase(t *testing.T) {
	c := NewCatalog()

	_, err := c.Describe(reflect.TypeFor[SelfNode]())
	require.ErrorIs(t, err, ErrCircularBase)
	assert.Contains(t, err.Error(), "SelfNode")

	_, err = c.Describe(reflect.TypeFor[*Chain]())
	require.ErrorIs(t, err, ErrCircularBase)

	_, err = c.Describe(reflect.TypeFor[Link]())
	require.ErrorIs(t, err, ErrCircularBase)

	// failures are not cached
	assert.Empty(t, c.types)
}

func TestCatalog_InvalidRelationshipTag(t *testing.T) {
	type Bad struct {
		ID    int
		Peers []Person `rel:"inverse=Dogs"`
	}

	_, err := NewCatalog().Describe(reflect.TypeFor[Bad]())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad.Peers")
}

func TestMember_NavigationTarget(t *testing.T) {
	c := NewCatalog()
	person, err := c.Describe(reflect.TypeFor[Person]())
	require.NoError(t, err)
	dog, err := c.Describe(reflect.TypeFor[Dog]())
	require.NoError(t, err)

	tests := []struct {
		info   *TypeInfo
		member string
		target reflect.Type
		ok     bool
	}{
		{person, "Dogs", reflect.TypeFor[Dog](), true},
		{person, "Partner", nil, false}, // read-only reference
		{person, "Born", nil, false},
		{dog, "Owner", reflect.TypeFor[Person](), true},
		{dog, "Friends", reflect.TypeFor[Dog](), true},
		{dog, "Kennel", nil, false}, // value struct
		{dog, "Breed", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			m, ok := tt.info.Member(tt.member)
			require.True(t, ok)
			target, ok := m.NavigationTarget()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestTypes_PrimitiveAndNullable(t *testing.T) {
	tests := []struct {
		name      string
		typ       reflect.Type
		primitive bool
		nullable  bool
		unwrapped reflect.Type
	}{
		{"int64", reflect.TypeFor[int64](), true, false, reflect.TypeFor[int64]()},
		{"*int64", reflect.TypeFor[*int64](), true, true, reflect.TypeFor[int64]()},
		{"string", reflect.TypeFor[string](), true, false, reflect.TypeFor[string]()},
		{"bytes", reflect.TypeFor[[]byte](), true, true, reflect.TypeFor[[]byte]()},
		{"uuid", reflect.TypeFor[uuid.UUID](), true, false, reflect.TypeFor[uuid.UUID]()},
		{"time", reflect.TypeFor[time.Time](), true, false, reflect.TypeFor[time.Time]()},
		{"NullInt64", reflect.TypeFor[sql.NullInt64](), true, true, reflect.TypeFor[int64]()},
		{"NullString", reflect.TypeFor[sql.NullString](), true, true, reflect.TypeFor[string]()},
		{"Null[int32]", reflect.TypeFor[sql.Null[int32]](), true, true, reflect.TypeFor[int32]()},
		{"struct", reflect.TypeFor[Kennel](), false, false, reflect.TypeFor[Kennel]()},
		{"map", reflect.TypeFor[map[string]int](), false, true, reflect.TypeFor[map[string]int]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.primitive, IsPrimitive(tt.typ))
			assert.Equal(t, tt.nullable, IsNullable(tt.typ))
			assert.Equal(t, tt.unwrapped, UnwrapNullable(tt.typ))
		})
	}
}

func TestParseRelationshipHint(t *testing.T) {
	tests := []struct {
		tag     string
		want    *RelationshipHint
		wantErr bool
	}{
		{"", nil, false},
		{"G_H,NavToG", &RelationshipHint{AssociationTable: "G_H", InverseProperty: "NavToG"}, false},
		{"G_H", &RelationshipHint{AssociationTable: "G_H"}, false},
		{"table=G_H, inverse=NavToG", &RelationshipHint{AssociationTable: "G_H", InverseProperty: "NavToG"}, false},
		{"inverse=NavToG", nil, true},
		{"table=G_H,on=delete", nil, true},
		{"a,b,c", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseRelationshipHint(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
