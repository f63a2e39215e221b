package metadata

import (
	"go.uber.org/zap"
)

// Result is the outcome of applying a convention
type Result[T any] struct {
	Value   T
	Stopped bool
}

// Continue passes value on to the next convention
func Continue[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Stop ends the pipeline without running the remaining conventions
func Stop[T any]() Result[T] {
	return Result[T]{Stopped: true}
}

// Convention is a named inference rule applied to a metadata object
type Convention[T any] struct {
	Name  string
	Apply func(T) (Result[T], error)
}

// ConventionSet holds the ordered conventions run at each trigger point
type ConventionSet struct {
	EntityAdded       []Convention[*Entity]
	BaseEntitySet     []Convention[*Entity]
	PropertyAdded     []Convention[*Property]
	KeyAdded          []Convention[*Key]
	PrimaryKeySet     []Convention[*Key]
	ForeignKeyAdded   []Convention[*ForeignKey]
	NavigationAdded   []Convention[*Navigation]
	LinkedEntityAdded []Convention[*Entity]
}

// ConventionDispatcher runs the conventions of a set against metadata objects.
//
// Each On method returns the value passed on by the last convention that
// continued. A convention returning Stop ends the pipeline without an error,
// and the value it received is returned. Callers cannot tell a stopped
// pipeline from a completed one by the result.
type ConventionDispatcher struct {
	set    *ConventionSet
	logger *zap.Logger
}

// NewConventionDispatcher creates a dispatcher over set
func NewConventionDispatcher(set *ConventionSet, logger *zap.Logger) *ConventionDispatcher {
	if set == nil {
		set = &ConventionSet{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConventionDispatcher{set: set, logger: logger}
}

// Conventions returns the dispatched convention set
func (d *ConventionDispatcher) Conventions() *ConventionSet { return d.set }

// OnEntityAdded runs the entity-added conventions
func (d *ConventionDispatcher) OnEntityAdded(e *Entity) (*Entity, error) {
	return dispatch(d, "EntityAdded", d.set.EntityAdded, e, e.Name())
}

// OnBaseEntitySet runs the base-entity-set conventions
func (d *ConventionDispatcher) OnBaseEntitySet(e *Entity) (*Entity, error) {
	return dispatch(d, "BaseEntitySet", d.set.BaseEntitySet, e, e.Name())
}

// OnLinkedEntityAdded runs the reduced pipeline for association entities
func (d *ConventionDispatcher) OnLinkedEntityAdded(e *Entity) (*Entity, error) {
	return dispatch(d, "LinkedEntityAdded", d.set.LinkedEntityAdded, e, e.Name())
}

// OnPropertyAdded runs the property-added conventions
func (d *ConventionDispatcher) OnPropertyAdded(p *Property) (*Property, error) {
	return dispatch(d, "PropertyAdded", d.set.PropertyAdded, p, p.DeclaringEntity().Name())
}

// OnKeyAdded runs the key-added conventions
func (d *ConventionDispatcher) OnKeyAdded(k *Key) (*Key, error) {
	return dispatch(d, "KeyAdded", d.set.KeyAdded, k, k.DeclaringEntity().Name())
}

// OnPrimaryKeySet runs the primary-key-set conventions
func (d *ConventionDispatcher) OnPrimaryKeySet(k *Key) (*Key, error) {
	return dispatch(d, "PrimaryKeySet", d.set.PrimaryKeySet, k, k.DeclaringEntity().Name())
}

// OnForeignKeyAdded runs the foreign-key-added conventions
func (d *ConventionDispatcher) OnForeignKeyAdded(fk *ForeignKey) (*ForeignKey, error) {
	return dispatch(d, "ForeignKeyAdded", d.set.ForeignKeyAdded, fk, fk.DeclaringEntity().Name())
}

// OnNavigationAdded runs the navigation-added conventions
func (d *ConventionDispatcher) OnNavigationAdded(n *Navigation) (*Navigation, error) {
	return dispatch(d, "NavigationAdded", d.set.NavigationAdded, n, n.DeclaringEntity().Name())
}

// dispatch folds value through conventions in order.
// A stopped result ends the pipeline and the last passed value is returned
// with a nil error.
func dispatch[T any](d *ConventionDispatcher, trigger string, conventions []Convention[T], value T, entity string) (T, error) {
	for _, c := range conventions {
		d.logger.Debug("applying convention",
			zap.String("trigger", trigger),
			zap.String("convention", c.Name),
			zap.String("entity", entity),
		)

		res, err := c.Apply(value)
		if err != nil {
			return value, err
		}
		if res.Stopped {
			d.logger.Debug("convention stopped pipeline",
				zap.String("trigger", trigger),
				zap.String("convention", c.Name),
				zap.String("entity", entity),
			)
			return value, nil
		}
		value = res.Value
	}
	return value, nil
}
