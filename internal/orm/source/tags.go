package source

import (
	"fmt"
	"strings"
)

const (
	// ModelTag is the struct tag controlling how a field is mapped
	ModelTag = "model"
	// RelationshipTag is the struct tag carrying a RelationshipHint
	RelationshipTag = "rel"
)

// RelationshipHint is the declared configuration of a navigation member.
//
//	Tags []Tag `rel:"table=post_tags,inverse=Posts"`
//	Tags []Tag `rel:"post_tags,Posts"`
type RelationshipHint struct {
	AssociationTable string
	InverseProperty  string
}

type fieldOptions struct {
	ignored  bool
	readOnly bool
}

func parseModelTag(tag string) fieldOptions {
	var opts fieldOptions
	for _, part := range strings.Split(tag, ",") {
		switch strings.TrimSpace(part) {
		case "-":
			opts.ignored = true
		case "readonly":
			opts.readOnly = true
		}
	}
	return opts
}

// ParseRelationshipHint parses the value of a rel tag.
// An empty tag yields a nil hint.
func ParseRelationshipHint(tag string) (*RelationshipHint, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, nil
	}

	hint := &RelationshipHint{}
	for i, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, named := strings.Cut(part, "=")
		if !named {
			switch i {
			case 0:
				hint.AssociationTable = part
			case 1:
				hint.InverseProperty = part
			default:
				return nil, fmt.Errorf("unexpected value %q in rel tag %q", part, tag)
			}
			continue
		}

		switch strings.TrimSpace(key) {
		case "table":
			hint.AssociationTable = strings.TrimSpace(value)
		case "inverse":
			hint.InverseProperty = strings.TrimSpace(value)
		default:
			return nil, fmt.Errorf("unknown option %q in rel tag %q", key, tag)
		}
	}

	if hint.AssociationTable == "" {
		return nil, fmt.Errorf("rel tag %q must name an association table", tag)
	}
	return hint, nil
}
