package metadata

import (
	"fmt"
	"strings"
)

// DebugString renders the model and every entity it holds
func (m *Model) DebugString(indent string) string {
	var b strings.Builder
	b.WriteString(indent + "Model: ")
	for _, e := range m.GetEntities() {
		b.WriteString("\n" + e.DebugString(false, indent+"  "))
	}
	b.WriteString(annotationsDebugString(&m.Annotable, indent+"  "))
	return b.String()
}

// DebugString renders the entity, with its members unless singleLine is set
func (e *Entity) DebugString(singleLine bool, indent string) string {
	var b strings.Builder
	b.WriteString(indent + "Entity: " + e.name)
	if e.baseType != nil {
		b.WriteString(" Base: " + e.baseType.name)
	}
	if e.IsAbstract() {
		b.WriteString(" Abstract")
	}
	if e.IsShadow() {
		b.WriteString(" Shadow")
	}
	if singleLine {
		return b.String()
	}

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString("\n" + indent + "  " + title + ": ")
		for _, l := range lines {
			b.WriteString("\n" + l)
		}
	}

	inner := indent + "    "
	var lines []string
	for _, p := range e.propertyOrder {
		lines = append(lines, p.DebugString(false, inner))
	}
	section("Properties", lines)

	lines = nil
	for _, n := range e.GetDeclaredNavigations() {
		lines = append(lines, n.DebugString(false, inner))
	}
	section("Navigations", lines)

	lines = nil
	for _, k := range e.keys {
		lines = append(lines, k.DebugString(false, inner))
	}
	section("Keys", lines)

	lines = nil
	for _, fk := range e.foreignKeys {
		lines = append(lines, fk.DebugString(false, inner))
	}
	section("Foreign keys", lines)

	lines = nil
	for _, ix := range e.indexes {
		lines = append(lines, ix.DebugString(false, inner))
	}
	section("Indexes", lines)

	b.WriteString(annotationsDebugString(&e.Annotable, indent+"  "))
	return b.String()
}

// DebugString renders the property and its flags
func (p *Property) DebugString(singleLine bool, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	if singleLine {
		b.WriteString("Property: " + p.declaringEntity.name + ".")
	}
	fmt.Fprintf(&b, "%s (%v)", p.name, p.typ)
	if p.IsShadow() {
		b.WriteString(" Shadow")
	}
	if !p.IsNullable() {
		b.WriteString(" Required")
	}
	if p.primaryKey != nil {
		b.WriteString(" PK")
	}
	if len(p.foreignKeys) > 0 {
		b.WriteString(" FK")
	}
	if len(p.keys) > 0 && p.primaryKey == nil {
		b.WriteString(" AlternateKey")
	}
	if len(p.indexes) > 0 {
		b.WriteString(" Index")
	}
	return b.String()
}

func qualifiedNames(properties []*Property, qualified bool) string {
	names := make([]string, len(properties))
	for i, p := range properties {
		if qualified {
			names[i] = p.declaringEntity.name + "." + p.name
		} else {
			names[i] = p.name
		}
	}
	return strings.Join(names, ", ")
}

// DebugString renders the key properties
func (k *Key) DebugString(singleLine bool, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	if singleLine {
		b.WriteString("Key: ")
	}
	b.WriteString(qualifiedNames(k.properties, singleLine))
	if k.IsPrimaryKey() {
		b.WriteString(" PK")
	}
	return b.String()
}

// DebugString renders the dependent and principal properties
func (fk *ForeignKey) DebugString(singleLine bool, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	if singleLine {
		b.WriteString("ForeignKey: ")
	}
	b.WriteString(qualifiedNames(fk.properties, singleLine))
	b.WriteString(" -> ")
	b.WriteString(qualifiedNames(fk.principalKey.properties, true))
	return b.String()
}

// DebugString renders the navigation and its target
func (n *Navigation) DebugString(singleLine bool, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	if singleLine {
		b.WriteString("Navigation: " + n.DeclaringEntity().name + ".")
	}
	fmt.Fprintf(&b, "%s (%v) %s via %s", n.Name(), n.Type(), n.GetTargetEntity().name, n.LinkedEntity().name)
	return b.String()
}

// DebugString renders the indexed properties
func (ix *Index) DebugString(singleLine bool, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	if singleLine {
		b.WriteString("Index: ")
	}
	b.WriteString(qualifiedNames(ix.properties, singleLine))
	if ix.unique {
		b.WriteString(" Unique")
	}
	return b.String()
}

func annotationsDebugString(a *Annotable, indent string) string {
	if len(a.annotations) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + indent + "Annotations: ")
	for name, value := range a.Annotations() {
		fmt.Fprintf(&b, "\n%s  %s: %v", indent, name, value)
	}
	return b.String()
}
