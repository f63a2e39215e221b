package conventions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

type Order struct {
	Id       int64
	Shipping *Address
	Billing  *Address
}

type Address struct {
	Id   int64
	Line string
}

type Author struct {
	Id        int64
	Books     *Book `rel:"Author_Book,Authors"`
	Favorites *Book `rel:"Author_Book_2,Authors"`
}

type Book struct {
	Id      int64
	Authors *Author
}

type Student struct {
	Id      int64
	Courses *Course
}

type Course struct {
	Id    int64
	Title string
}

type Employee struct {
	Id      int64
	Reports []Employee
	Bosses  []Employee
}

type Topic struct {
	Id      int64
	Related []*Topic
}

type Shelf struct {
	Id    int64
	Items []Item
}

type Item struct {
	Label string
}

type Reader struct {
	Id      int64
	Current *Magazine `model:"readonly"`
	Past    []Magazine `model:"readonly"`
}

type Magazine struct {
	Id int64
}

type Post struct {
	Id   int64
	Tags []Tag `rel:"post_tags,Posts"`
}

type Tag struct {
	Id    int64
	Posts []Post `rel:"tag_posts,Tags"`
}

type Playlist struct {
	Id     int64
	Tracks []Track `rel:"playlist_tracks"`
}

type Track struct {
	Id        int64
	Playlists []Playlist
}

type Base struct {
	source.Abstract
	Id int64
}

type Derived struct {
	Base
	Peers []Derived
}

func memberNames(members []*source.Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func navigationNames(e *metadata.Entity) []string {
	var names []string
	for _, n := range e.GetDeclaredNavigations() {
		names = append(names, n.Name())
	}
	return names
}

func TestRelationshipDiscovery_AmbiguousNavigations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewModel(metadata.WithLogger(zap.New(core)))

	order, err := metadata.GetOrAddEntityOf[Order](m)
	require.NoError(t, err)
	address := metadata.FindEntityOf[Address](m)
	require.NotNil(t, address)

	assert.Equal(t, []string{"Shipping", "Billing"}, memberNames(AmbiguousNavigations(order)))
	assert.Empty(t, order.GetDeclaredNavigations())
	assert.Empty(t, address.GetDeclaredNavigations())
	assert.Nil(t, AmbiguousNavigations(address))
	assert.Equal(t, 1, logs.FilterMessage("ambiguous navigations").Len())
}

func TestRelationshipDiscovery_InverseTagsResolveAmbiguity(t *testing.T) {
	m := NewModel()

	author, err := metadata.GetOrAddEntityOf[Author](m)
	require.NoError(t, err)
	book := metadata.FindEntityOf[Book](m)
	require.NotNil(t, book)

	assert.Equal(t, []string{"Books"}, navigationNames(author))
	assert.Equal(t, []string{"Authors"}, navigationNames(book))
	assert.Equal(t, []string{"Favorites"}, memberNames(AmbiguousNavigations(author)))
	_, ok := book.FindAnnotation(AmbiguousNavigationsAnnotation)
	assert.False(t, ok)

	books := author.FindDeclaredNavigation("Books")
	assert.Equal(t, "Author_Book", books.LinkedEntity().Name())
	assert.Same(t, books.LinkedEntity(), book.FindDeclaredNavigation("Authors").LinkedEntity())
}

func TestRelationshipDiscovery_SingleNavigation(t *testing.T) {
	m := NewModel()

	student, err := metadata.GetOrAddEntityOf[Student](m)
	require.NoError(t, err)
	course := metadata.FindEntityOf[Course](m)
	require.NotNil(t, course)

	nav := student.FindDeclaredNavigation("Courses")
	require.NotNil(t, nav)
	assert.Same(t, course, nav.GetTargetEntity())
	assert.False(t, nav.IsCollection())
	assert.Empty(t, course.GetDeclaredNavigations())

	linked := m.FindEntity("Student_Course")
	require.NotNil(t, linked)
	assert.True(t, linked.IsLinked())
	assert.Equal(t, []string{"IdStudent", "IdCourse"}, propertyNames(linked.GetDeclaredProperties()))
	assert.Equal(t, []string{"IdStudent", "IdCourse"}, propertyNames(linked.FindPrimaryKey().Properties()))
	assert.Nil(t, AmbiguousNavigations(student))
}

func TestRelationshipDiscovery_StartingFromTarget(t *testing.T) {
	m := NewModel()

	course, err := metadata.GetOrAddEntityOf[Course](m)
	require.NoError(t, err)
	student, err := metadata.GetOrAddEntityOf[Student](m)
	require.NoError(t, err)

	assert.Same(t, course, student.FindDeclaredNavigation("Courses").GetTargetEntity())
	assert.Len(t, m.GetEntities(), 3)
}

func TestRelationshipDiscovery_SelfReferencePair(t *testing.T) {
	m := NewModel()

	employee, err := metadata.GetOrAddEntityOf[Employee](m)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bosses", "Reports"}, navigationNames(employee))
	bosses := employee.FindDeclaredNavigation("Bosses")
	reports := employee.FindDeclaredNavigation("Reports")
	assert.Same(t, bosses.LinkedEntity(), reports.LinkedEntity())
	assert.Same(t, bosses.ForeignKeyToLinked(), reports.ForeignKeyToTarget())

	linked := bosses.LinkedEntity()
	assert.Equal(t, "Employee_Employee", linked.Name())
	assert.Equal(t, []string{"IdEmployee", "IdEmployee2"}, propertyNames(linked.GetDeclaredProperties()))
	assert.Nil(t, AmbiguousNavigations(employee))
}

func TestRelationshipDiscovery_UnidirectionalSelfReference(t *testing.T) {
	m := NewModel()

	topic, err := metadata.GetOrAddEntityOf[Topic](m)
	require.NoError(t, err)

	related := topic.FindDeclaredNavigation("Related")
	require.NotNil(t, related)
	assert.Same(t, topic, related.GetTargetEntity())
	assert.True(t, related.IsCollection())
	assert.Len(t, m.GetEntities(), 2)
}

func TestRelationshipDiscovery_TargetWithoutKey(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewModel(metadata.WithLogger(zap.New(core)))

	shelf, err := metadata.GetOrAddEntityOf[Shelf](m)
	require.NoError(t, err)

	item := metadata.FindEntityOf[Item](m)
	require.NotNil(t, item)
	assert.Nil(t, item.FindPrimaryKey())
	assert.Empty(t, shelf.GetDeclaredNavigations())
	assert.Equal(t, 1, logs.FilterMessage("skipping navigation to entity without primary key").Len())
}

func TestRelationshipDiscovery_ReadOnlyMembers(t *testing.T) {
	m := NewModel()

	reader, err := metadata.GetOrAddEntityOf[Reader](m)
	require.NoError(t, err)

	assert.Equal(t, []string{"Past"}, navigationNames(reader))
	candidates := NavigationCandidates(reader)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Past -> Magazine", candidates[0].String())
}

func TestRelationshipDiscovery_IncoherentTableNames(t *testing.T) {
	m := NewModel()

	_, err := metadata.GetOrAddEntityOf[Post](m)
	assert.ErrorIs(t, err, metadata.ErrIncoherentAssociationTableNames)
}

func TestRelationshipDiscovery_TableFromNavigationTag(t *testing.T) {
	m := NewModel()

	playlist, err := metadata.GetOrAddEntityOf[Playlist](m)
	require.NoError(t, err)
	track := metadata.FindEntityOf[Track](m)

	tracks := playlist.FindDeclaredNavigation("Tracks")
	require.NotNil(t, tracks)
	assert.Equal(t, "playlist_tracks", tracks.LinkedEntity().Name())
	assert.Same(t, tracks.LinkedEntity(), track.FindDeclaredNavigation("Playlists").LinkedEntity())
}

func TestRelationshipDiscovery_InheritedKey(t *testing.T) {
	m := NewModel()

	derived, err := metadata.GetOrAddEntityOf[Derived](m)
	require.NoError(t, err)

	peers := derived.FindDeclaredNavigation("Peers")
	require.NotNil(t, peers)
	assert.Equal(t, []string{"IdDerived", "IdDerived2"}, propertyNames(peers.LinkedEntity().GetDeclaredProperties()))
}

func TestNavigationCandidatesOrderedByName(t *testing.T) {
	m := metadata.NewModel()
	order, err := metadata.GetOrAddEntityOf[Order](m)
	require.NoError(t, err)

	candidates := NavigationCandidates(order)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Billing", candidates[0].Member.Name)
	assert.Equal(t, "Shipping", candidates[1].Member.Name)

	_, cached := order.FindAnnotation(NavigationCandidatesAnnotation)
	assert.True(t, cached)
}
