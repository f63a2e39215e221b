package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func recordingConvention(name string, calls *[]string, stop bool) Convention[*Entity] {
	return Convention[*Entity]{
		Name: name,
		Apply: func(e *Entity) (Result[*Entity], error) {
			*calls = append(*calls, name)
			if stop {
				return Stop[*Entity](), nil
			}
			return Continue(e), nil
		},
	}
}

func TestDispatcher_RunsConventionsInOrder(t *testing.T) {
	var calls []string
	set := &ConventionSet{
		EntityAdded: []Convention[*Entity]{
			recordingConvention("first", &calls, false),
			recordingConvention("second", &calls, false),
		},
	}

	m := NewModel(WithConventions(set))
	_, err := m.GetOrAddEntity(typeOf[Driver]())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatcher_StopShortCircuits(t *testing.T) {
	var calls []string
	set := &ConventionSet{
		EntityAdded: []Convention[*Entity]{
			recordingConvention("veto", &calls, true),
			recordingConvention("never", &calls, false),
		},
	}

	core, logs := observer.New(zap.DebugLevel)
	m := NewModel(WithConventions(set), WithLogger(zap.New(core)))

	e, err := m.GetOrAddEntity(typeOf[Driver]())
	require.NoError(t, err)
	assert.NotNil(t, e)
	assert.Same(t, e, m.FindEntity("Driver"))
	assert.Equal(t, []string{"veto"}, calls)
	assert.Equal(t, 1, logs.FilterMessage("convention stopped pipeline").Len())
}

func TestDispatcher_TransformsValue(t *testing.T) {
	m := newTestModel()
	e := addEntity[Driver](t, m)
	other := addEntity[Garage](t, m)

	d := NewConventionDispatcher(&ConventionSet{
		EntityAdded: []Convention[*Entity]{
			{Name: "swap", Apply: func(*Entity) (Result[*Entity], error) { return Continue(other), nil }},
		},
	}, nil)

	got, err := d.OnEntityAdded(e)
	require.NoError(t, err)
	assert.Same(t, other, got)
}

func TestDispatcher_StopReturnsLastPassedValue(t *testing.T) {
	m := newTestModel()
	e := addEntity[Driver](t, m)
	other := addEntity[Garage](t, m)

	var received *Entity
	d := NewConventionDispatcher(&ConventionSet{
		EntityAdded: []Convention[*Entity]{
			{Name: "swap", Apply: func(*Entity) (Result[*Entity], error) { return Continue(other), nil }},
			{Name: "veto", Apply: func(v *Entity) (Result[*Entity], error) {
				received = v
				return Stop[*Entity](), nil
			}},
			{Name: "never", Apply: func(*Entity) (Result[*Entity], error) { return Continue(e), nil }},
		},
	}, nil)

	got, err := d.OnEntityAdded(e)
	require.NoError(t, err)
	assert.Same(t, other, received)
	assert.Same(t, other, got)
}

func TestDispatcher_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	set := &ConventionSet{
		PropertyAdded: []Convention[*Property]{
			{Name: "fail", Apply: func(*Property) (Result[*Property], error) { return Result[*Property]{}, boom }},
			{Name: "never", Apply: func(p *Property) (Result[*Property], error) {
				calls = append(calls, "never")
				return Continue(p), nil
			}},
		},
	}

	m := NewModel(WithConventions(set))
	e, err := m.AddEntity(typeOf[Driver](), false)
	require.NoError(t, err)

	_, err = e.AddProperty(member(t, e, "Code"), true)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, calls)
}

func TestDispatcher_ReentrantDispatch(t *testing.T) {
	var added []string
	set := &ConventionSet{}
	set.EntityAdded = []Convention[*Entity]{{
		Name: "add-properties",
		Apply: func(e *Entity) (Result[*Entity], error) {
			for _, name := range []string{"Id", "Code"} {
				m, _ := e.TypeInfo().Member(name)
				if _, err := e.GetOrAddProperty(m); err != nil {
					return Result[*Entity]{}, err
				}
			}
			return Continue(e), nil
		},
	}}
	set.PropertyAdded = []Convention[*Property]{{
		Name: "record",
		Apply: func(p *Property) (Result[*Property], error) {
			added = append(added, p.Name())
			// a nested lookup of an existing property must not re-add it
			if _, err := p.DeclaringEntity().GetOrAddProperty(p.Member()); err != nil {
				return Result[*Property]{}, err
			}
			return Continue(p), nil
		},
	}}

	m := NewModel(WithConventions(set))
	e, err := m.GetOrAddEntity(typeOf[Driver]())
	require.NoError(t, err)

	assert.Equal(t, []string{"Id", "Code"}, added)
	assert.Len(t, e.GetDeclaredProperties(), 2)
}
