package conventions

import (
	"cmp"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// Annotation names written by RelationshipDiscovery
const (
	NavigationCandidatesAnnotation = "RelationshipDiscoveryConvention:NavigationCandidates"
	AmbiguousNavigationsAnnotation = "RelationshipDiscoveryConvention:AmbiguousNavigations"
	discoverySessionAnnotation     = "RelationshipDiscoveryConvention:Session"
)

// NavigationCandidate is a member that may become a navigation
type NavigationCandidate struct {
	Member *source.Member
	Target reflect.Type
}

// String implements fmt.Stringer
func (c NavigationCandidate) String() string {
	return c.Member.Name + " -> " + c.Target.Name()
}

// relationshipCandidate groups the navigations of an entity towards one target
type relationshipCandidate struct {
	target      *metadata.Entity
	navigations []*source.Member
	inverses    []*source.Member
}

// discoverySession defers relationship discovery until every entity reached
// from the first discovered entity has run its entity-added conventions.
type discoverySession struct {
	queue  []*metadata.Entity
	queued map[*metadata.Entity]bool
}

func (s *discoverySession) enqueue(e *metadata.Entity) {
	if s.queued[e] {
		return
	}
	s.queued[e] = true
	s.queue = append(s.queue, e)
}

// RelationshipDiscovery turns navigation candidates into many-to-many
// relationships. Candidates that cannot be paired with a single inverse are
// recorded in the AmbiguousNavigationsAnnotation instead.
type RelationshipDiscovery struct{}

// Name implements EntityConvention
func (RelationshipDiscovery) Name() string { return "RelationshipDiscovery" }

// Apply implements EntityConvention
func (c RelationshipDiscovery) Apply(e *metadata.Entity) (metadata.Result[*metadata.Entity], error) {
	if e.IsShadow() {
		return metadata.Continue(e), nil
	}

	m := e.Model()
	session, active := metadata.AnnotationValue[*discoverySession](&m.Annotable, discoverySessionAnnotation)
	owner := !active
	if owner {
		session = &discoverySession{queued: make(map[*metadata.Entity]bool)}
		m.SetAnnotation(discoverySessionAnnotation, session)
		defer m.RemoveAnnotation(discoverySessionAnnotation)
	}

	discovered, err := discoverEntities(e)
	if err != nil {
		return metadata.Result[*metadata.Entity]{}, err
	}
	for _, d := range discovered[1:] {
		if _, err := m.Dispatcher().OnEntityAdded(d); err != nil {
			return metadata.Result[*metadata.Entity]{}, err
		}
	}

	session.enqueue(e)
	if !owner {
		return metadata.Continue(e), nil
	}

	for len(session.queue) > 0 {
		next := session.queue[0]
		session.queue = session.queue[1:]
		if err := c.discoverRelationships(next); err != nil {
			return metadata.Result[*metadata.Entity]{}, err
		}
	}
	return metadata.Continue(e), nil
}

// discoverEntities registers, without running conventions, every entity type
// reachable from e through navigation candidates. e comes first.
func discoverEntities(e *metadata.Entity) ([]*metadata.Entity, error) {
	m := e.Model()
	discovered := []*metadata.Entity{}
	stack := []*metadata.Entity{e}

	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		discovered = append(discovered, next)

		candidates := NavigationCandidates(next)
		for i := len(candidates) - 1; i >= 0; i-- {
			if m.FindEntityByType(candidates[i].Target) != nil {
				continue
			}
			target, err := m.AddEntity(candidates[i].Target, false)
			if err != nil {
				return nil, err
			}
			stack = append(stack, target)
		}
	}
	return discovered, nil
}

func (RelationshipDiscovery) discoverRelationships(e *metadata.Entity) error {
	logger := e.Model().Logger()
	if e.FindPrimaryKey() == nil {
		if len(NavigationCandidates(e)) > 0 {
			logger.Info("skipping relationship discovery for entity without primary key",
				zap.String("entity", e.Name()))
		}
		return nil
	}

	groups := findRelationshipCandidates(e)
	resolved := removeIncompatibleRelationships(e, groups)

	for _, r := range resolved {
		var inverse *source.Member
		if len(r.inverses) > 0 {
			inverse = r.inverses[0]
		}
		navigation := r.navigations[0]

		if _, err := e.AddManyToManyRelationship(r.target, navigation, inverse); err != nil {
			return err
		}
		removeAmbiguous(e, navigation)
		if inverse != nil {
			removeAmbiguous(r.target, inverse)
		}
	}
	return nil
}

// NavigationCandidates returns the members of e that may become navigations,
// ordered by name. The result is cached on e.
func NavigationCandidates(e *metadata.Entity) []NavigationCandidate {
	if e.IsShadow() {
		return nil
	}
	if cached, ok := metadata.AnnotationValue[[]NavigationCandidate](&e.Annotable, NavigationCandidatesAnnotation); ok {
		return cached
	}

	var candidates []NavigationCandidate
	for _, member := range e.TypeInfo().Members {
		if target, ok := member.NavigationTarget(); ok {
			candidates = append(candidates, NavigationCandidate{Member: member, Target: target})
		}
	}
	slices.SortStableFunc(candidates, func(a, b NavigationCandidate) int {
		return strings.Compare(a.Member.Name, b.Member.Name)
	})

	e.SetAnnotation(NavigationCandidatesAnnotation, candidates)
	return candidates
}

func findRelationshipCandidates(e *metadata.Entity) []*relationshipCandidate {
	m := e.Model()
	logger := m.Logger()

	var groups []*relationshipCandidate
	byTarget := make(map[reflect.Type]*relationshipCandidate)

	for _, candidate := range NavigationCandidates(e) {
		target := m.FindEntityByType(candidate.Target)
		if target == nil {
			continue
		}

		if existing, ok := byTarget[candidate.Target]; ok {
			if target != e || !slices.Contains(existing.inverses, candidate.Member) {
				existing.navigations = append(existing.navigations, candidate.Member)
			}
			continue
		}

		if target.FindPrimaryKey() == nil {
			logger.Info("skipping navigation to entity without primary key",
				zap.String("entity", e.Name()),
				zap.String("navigation", candidate.Member.Name),
				zap.String("target", target.Name()),
			)
			continue
		}

		var inverses []*source.Member
		for _, inverse := range NavigationCandidates(target) {
			if inverse.Target != e.Type() || inverse.Member == candidate.Member {
				continue
			}
			if len(target.FindNavigationsInHierarchy(inverse.Member.Name)) > 0 {
				continue
			}
			inverses = append(inverses, inverse.Member)
		}
		slices.SortStableFunc(inverses, byPosition)

		group := &relationshipCandidate{
			target:      target,
			navigations: []*source.Member{candidate.Member},
			inverses:    inverses,
		}
		byTarget[candidate.Target] = group
		groups = append(groups, group)
	}
	return groups
}

func byPosition(a, b *source.Member) int {
	return cmp.Compare(a.Position, b.Position)
}

func isCompatibleInverse(navigation, inverse *source.Member, group *relationshipCandidate) bool {
	if navigation.Hint != nil && strings.EqualFold(navigation.Hint.InverseProperty, inverse.Name) {
		return true
	}
	if inverse.Hint != nil && strings.EqualFold(inverse.Hint.InverseProperty, navigation.Name) {
		return true
	}
	return len(group.navigations) == 1 && len(group.inverses) == 1
}

func without(members []*source.Member, m *source.Member) []*source.Member {
	return slices.DeleteFunc(slices.Clone(members), func(x *source.Member) bool { return x == m })
}

// removeIncompatibleRelationships pairs navigations with inverses and returns
// one resolved candidate per relationship to create. Navigations left over
// are recorded as ambiguous on e.
func removeIncompatibleRelationships(e *metadata.Entity, groups []*relationshipCandidate) []*relationshipCandidate {
	var resolved []*relationshipCandidate

	for _, group := range groups {
		navigationCount := len(group.navigations)

		promoteSelfReference := func() {
			if group.target == e && len(group.inverses) > 0 {
				next := group.inverses[0]
				group.navigations = append(group.navigations, next)
				group.inverses = group.inverses[1:]
			}
		}

		for revisit := true; revisit; {
			revisit = false
			for _, navigation := range group.navigations {
				if len(e.FindNavigationsInHierarchy(navigation.Name)) > 0 {
					group.navigations = without(group.navigations, navigation)
					revisit = true
					break
				}

				var compatible []*source.Member
				for revisitInverses := true; revisitInverses; {
					revisitInverses = false
					for _, inverse := range group.inverses {
						if isCompatibleInverse(navigation, inverse, group) {
							compatible = append(compatible, inverse)
							group.inverses = without(group.inverses, inverse)
							revisitInverses = true
							break
						}
					}
				}

				unidirectional := navigation.Hint != nil && strings.TrimSpace(navigation.Hint.InverseProperty) == ""
				if len(compatible) == 0 && (unidirectional || navigationCount == 1) {
					group.navigations = without(group.navigations, navigation)
					resolved = append(resolved, &relationshipCandidate{
						target:      group.target,
						navigations: []*source.Member{navigation},
					})
					promoteSelfReference()
					revisit = true
					break
				}

				if len(compatible) == 1 {
					group.navigations = without(group.navigations, navigation)
					resolved = append(resolved, &relationshipCandidate{
						target:      group.target,
						navigations: []*source.Member{navigation},
						inverses:    compatible,
					})
					promoteSelfReference()
					revisit = true
					break
				}
			}
		}

		if len(group.navigations) > 0 {
			addAmbiguous(e, group.navigations)
		}
	}
	return resolved
}

// AmbiguousNavigations returns the navigation candidates of e that could not
// be resolved, in declaration order
func AmbiguousNavigations(e *metadata.Entity) []*source.Member {
	members, _ := metadata.AnnotationValue[[]*source.Member](&e.Annotable, AmbiguousNavigationsAnnotation)
	return members
}

func addAmbiguous(e *metadata.Entity, navigations []*source.Member) {
	merged := slices.Clone(AmbiguousNavigations(e))
	for _, n := range navigations {
		if !slices.Contains(merged, n) {
			merged = append(merged, n)
		}
	}
	slices.SortStableFunc(merged, byPosition)
	e.SetAnnotation(AmbiguousNavigationsAnnotation, merged)

	names := make([]string, len(merged))
	for i, n := range merged {
		names[i] = n.Name
	}
	e.Model().Logger().Info("ambiguous navigations",
		zap.String("entity", e.Name()),
		zap.Strings("navigations", names),
	)
}

func removeAmbiguous(e *metadata.Entity, navigation *source.Member) bool {
	current := AmbiguousNavigations(e)
	if !slices.Contains(current, navigation) {
		return false
	}
	remaining := without(current, navigation)
	if len(remaining) == 0 {
		e.RemoveAnnotation(AmbiguousNavigationsAnnotation)
	} else {
		e.SetAnnotation(AmbiguousNavigationsAnnotation, remaining)
	}
	return true
}
