package metadata

import (
	"strings"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// AddNavigation adds a navigation reaching its target through an association entity
func (e *Entity) AddNavigation(member *source.Member, fkToLinked, fkToTarget *ForeignKey) (*Navigation, error) {
	if member == nil {
		return nil, NewArgumentNull("member")
	}
	if fkToLinked == nil {
		return nil, NewArgumentNull("fkToLinked")
	}
	if fkToTarget == nil {
		return nil, NewArgumentNull("fkToTarget")
	}
	if err := e.checkNavigationName(member.Name); err != nil {
		return nil, err
	}

	nav := &Navigation{
		member:     member,
		fkToLinked: fkToLinked,
		fkToTarget: fkToTarget,
	}
	e.navigations[member.Name] = nav

	if _, err := e.model.dispatcher.OnNavigationAdded(nav); err != nil {
		return nav, err
	}
	return nav, nil
}

// checkNavigationName enforces the shared property and navigation name space
func (e *Entity) checkNavigationName(name string) error {
	if dup := e.FindNavigationsInHierarchy(name); len(dup) > 0 {
		return NewDuplicateNavigation(name, e.name, dup[0].DeclaringEntity().name)
	}
	if dup := e.FindPropertiesInHierarchy(name); len(dup) > 0 {
		return NewConflictingProperty(name, e.name, dup[0].declaringEntity.name)
	}
	return nil
}

// AssociationTableName resolves the association entity name of a many-to-many
// relationship from the rel tags of navigation and inverse, defaulting to
// "{This}_{Target}".
func (e *Entity) AssociationTableName(target *Entity, navigation, inverse *source.Member) (string, error) {
	var navTable, inverseTable string
	if navigation != nil && navigation.Hint != nil {
		navTable = strings.TrimSpace(navigation.Hint.AssociationTable)
	}
	if inverse != nil && inverse.Hint != nil {
		inverseTable = strings.TrimSpace(inverse.Hint.AssociationTable)
	}

	switch {
	case navTable != "" && inverseTable != "" && !strings.EqualFold(navTable, inverseTable):
		return "", NewIncoherentAssociationTableNames(e.name, navigation.Name, inverse.Name)
	case navTable != "":
		return navTable, nil
	case inverseTable != "":
		return inverseTable, nil
	}
	return e.name + "_" + target.name, nil
}

// AddManyToManyRelationship links e and target through a synthesized association
// entity. navigation is added to e; inverse, when not nil, is added to target.
func (e *Entity) AddManyToManyRelationship(target *Entity, navigation, inverse *source.Member) (*Entity, error) {
	if target == nil {
		return nil, NewArgumentNull("target")
	}
	if navigation == nil {
		return nil, NewArgumentNull("navigation")
	}

	table, err := e.AssociationTableName(target, navigation, inverse)
	if err != nil {
		return nil, err
	}

	if err := e.checkNavigationName(navigation.Name); err != nil {
		return nil, err
	}
	if inverse != nil {
		if target == e && inverse.Name == navigation.Name {
			return nil, NewDuplicateNavigation(inverse.Name, target.name, e.name)
		}
		if err := target.checkNavigationName(inverse.Name); err != nil {
			return nil, err
		}
	}

	linked, err := e.model.AddLinkedEntity(table, e, target)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddNavigation(navigation, linked.linkFirst, linked.linkSecond); err != nil {
		return linked, err
	}
	if inverse != nil {
		if _, err := target.AddNavigation(inverse, linked.linkSecond, linked.linkFirst); err != nil {
			return linked, err
		}
	}
	return linked, nil
}
