package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a stable identifier for a metadata error
type ErrorCode string

// Metadata error codes (MDL001-099)
const (
	CodeArgumentNull                      ErrorCode = "MDL001"
	CodeArgumentEmpty                     ErrorCode = "MDL002"
	CodeDuplicateEntity                   ErrorCode = "MDL003"
	CodeDuplicateKey                      ErrorCode = "MDL004"
	CodeDuplicateForeignKey               ErrorCode = "MDL005"
	CodeDuplicateNavigation               ErrorCode = "MDL006"
	CodeDuplicateAnnotation               ErrorCode = "MDL007"
	CodeDuplicateIndex                    ErrorCode = "MDL008"
	CodeBaseTypeAlreadyDefined            ErrorCode = "MDL009"
	CodeDerivedEntityKey                  ErrorCode = "MDL010"
	CodePrimaryKeyAlreadyExists           ErrorCode = "MDL011"
	CodeKeyPropertiesWrongEntity          ErrorCode = "MDL012"
	CodeKeyPropertyInForeignKey           ErrorCode = "MDL013"
	CodeNullableKey                       ErrorCode = "MDL014"
	CodeForeignKeyPropertiesWrongEntity   ErrorCode = "MDL015"
	CodeForeignKeyPropertyInKey           ErrorCode = "MDL016"
	CodeForeignKeyCountMismatch           ErrorCode = "MDL017"
	CodeForeignKeyTypeMismatch            ErrorCode = "MDL018"
	CodeForeignKeyReferencedEntityKey     ErrorCode = "MDL019"
	CodeConflictingProperty               ErrorCode = "MDL020"
	CodeIncoherentAssociationTableNames   ErrorCode = "MDL021"
	CodeInvalidEntityType                 ErrorCode = "MDL022"
	CodeMissingPrimaryKey                 ErrorCode = "MDL023"
	CodeConflictingColumnServerGeneration ErrorCode = "MDL024"
	CodeDuplicateProperty                 ErrorCode = "MDL025"
	CodeCircularInheritance               ErrorCode = "MDL026"
)

// Error kinds, matched with errors.Is
var (
	ErrArgumentNull                      = errors.New("argument is nil")
	ErrArgumentEmpty                     = errors.New("argument is empty")
	ErrDuplicateEntity                   = errors.New("duplicate entity")
	ErrDuplicateKey                      = errors.New("duplicate key")
	ErrDuplicateForeignKey               = errors.New("duplicate foreign key")
	ErrDuplicateNavigation               = errors.New("duplicate navigation")
	ErrDuplicateAnnotation               = errors.New("duplicate annotation")
	ErrDuplicateIndex                    = errors.New("duplicate index")
	ErrBaseTypeAlreadyDefined            = errors.New("base type already defined")
	ErrDerivedEntityKey                  = errors.New("key on derived entity")
	ErrPrimaryKeyAlreadyExists           = errors.New("primary key already exists")
	ErrKeyPropertiesWrongEntity          = errors.New("key properties on wrong entity")
	ErrKeyPropertyInForeignKey           = errors.New("key property in foreign key")
	ErrNullableKey                       = errors.New("nullable key property")
	ErrForeignKeyPropertiesWrongEntity   = errors.New("foreign key properties on wrong entity")
	ErrForeignKeyPropertyInKey           = errors.New("foreign key property in key")
	ErrForeignKeyCountMismatch           = errors.New("foreign key count mismatch")
	ErrForeignKeyTypeMismatch            = errors.New("foreign key type mismatch")
	ErrForeignKeyReferencedEntityKey     = errors.New("foreign key references key outside principal entity")
	ErrConflictingProperty               = errors.New("conflicting property")
	ErrIncoherentAssociationTableNames   = errors.New("incoherent association table names")
	ErrInvalidEntityType                 = errors.New("invalid entity type")
	ErrMissingPrimaryKey                 = errors.New("missing primary key")
	ErrConflictingColumnServerGeneration = errors.New("conflicting column server generation")
	ErrDuplicateProperty                 = errors.New("duplicate property")
	ErrCircularInheritance               = errors.New("circular inheritance")
)

// MetadataError is returned when an operation would break a model invariant
type MetadataError struct {
	// Code is the stable error code (e.g., "MDL004")
	Code ErrorCode
	// Kind is the sentinel the error matches with errors.Is
	Kind error
	// Message is the human-readable description
	Message string
	// Entity names the entity the operation targeted, if any
	Entity string
}

// Error implements the error interface
func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the error kind
func (e *MetadataError) Unwrap() error {
	return e.Kind
}

func newError(code ErrorCode, kind error, entity string, format string, args ...any) *MetadataError {
	return &MetadataError{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Entity:  entity,
	}
}

// formatProperties renders a property list as {'A', 'B'}
func formatProperties(properties []*Property) string {
	names := make([]string, len(properties))
	for i, p := range properties {
		if p == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = "'" + p.Name() + "'"
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// NewArgumentNull creates an MDL001 error
func NewArgumentNull(argument string) *MetadataError {
	return newError(CodeArgumentNull, ErrArgumentNull, "", "the argument '%s' cannot be nil", argument)
}

// NewArgumentEmpty creates an MDL002 error
func NewArgumentEmpty(argument string) *MetadataError {
	return newError(CodeArgumentEmpty, ErrArgumentEmpty, "", "the argument '%s' cannot be empty", argument)
}

// NewDuplicateEntity creates an MDL003 error
func NewDuplicateEntity(entity string) *MetadataError {
	return newError(CodeDuplicateEntity, ErrDuplicateEntity, entity,
		"the entity '%s' cannot be added to the model because an entity with the same name already exists", entity)
}

// NewDuplicateKey creates an MDL004 error
func NewDuplicateKey(properties []*Property, entity, duplicateEntity string) *MetadataError {
	return newError(CodeDuplicateKey, ErrDuplicateKey, entity,
		"the key %s cannot be added to the entity '%s' because a key on the same properties already exists on the entity '%s'",
		formatProperties(properties), entity, duplicateEntity)
}

// NewDuplicateForeignKey creates an MDL005 error
func NewDuplicateForeignKey(properties []*Property, entity, duplicateEntity string, principalKey []*Property, principal string) *MetadataError {
	return newError(CodeDuplicateForeignKey, ErrDuplicateForeignKey, entity,
		"the foreign key %s cannot be added to the entity '%s' because a foreign key on the same properties targeting the key %s on '%s' already exists on the entity '%s'",
		formatProperties(properties), entity, formatProperties(principalKey), principal, duplicateEntity)
}

// NewDuplicateNavigation creates an MDL006 error
func NewDuplicateNavigation(navigation, entity, duplicateEntity string) *MetadataError {
	return newError(CodeDuplicateNavigation, ErrDuplicateNavigation, entity,
		"the navigation '%s' cannot be added to the entity '%s' because a navigation with the same name already exists on the entity '%s'",
		navigation, entity, duplicateEntity)
}

// NewDuplicateAnnotation creates an MDL007 error
func NewDuplicateAnnotation(annotation string) *MetadataError {
	return newError(CodeDuplicateAnnotation, ErrDuplicateAnnotation, "",
		"the annotation '%s' cannot be added because an annotation with the same name already exists", annotation)
}

// NewDuplicateIndex creates an MDL008 error
func NewDuplicateIndex(properties []*Property, entity, duplicateEntity string) *MetadataError {
	return newError(CodeDuplicateIndex, ErrDuplicateIndex, entity,
		"the index %s cannot be added to the entity '%s' because an index on the same properties already exists on the entity '%s'",
		formatProperties(properties), entity, duplicateEntity)
}

// NewBaseTypeAlreadyDefined creates an MDL009 error
func NewBaseTypeAlreadyDefined(entity, baseType string) *MetadataError {
	return newError(CodeBaseTypeAlreadyDefined, ErrBaseTypeAlreadyDefined, entity,
		"the base type of the entity '%s' is already defined as '%s' and cannot be changed", entity, baseType)
}

// NewDerivedEntityKey creates an MDL010 error
func NewDerivedEntityKey(derived, root string) *MetadataError {
	return newError(CodeDerivedEntityKey, ErrDerivedEntityKey, derived,
		"a key cannot be configured on '%s' because it is a derived type; the key must be configured on the root type '%s'",
		derived, root)
}

// NewPrimaryKeyAlreadyExists creates an MDL011 error
func NewPrimaryKeyAlreadyExists(entity string) *MetadataError {
	return newError(CodePrimaryKeyAlreadyExists, ErrPrimaryKeyAlreadyExists, entity,
		"the entity '%s' already has a primary key", entity)
}

// NewKeyPropertiesWrongEntity creates an MDL012 error
func NewKeyPropertiesWrongEntity(properties []*Property, entity string) *MetadataError {
	return newError(CodeKeyPropertiesWrongEntity, ErrKeyPropertiesWrongEntity, entity,
		"the specified key properties %s are not declared on the entity '%s'", formatProperties(properties), entity)
}

// NewKeyPropertyInForeignKey creates an MDL013 error
func NewKeyPropertyInForeignKey(property, entity string) *MetadataError {
	return newError(CodeKeyPropertyInForeignKey, ErrKeyPropertyInForeignKey, entity,
		"the property '%s' cannot be part of a key on '%s' because it is contained in a foreign key defined on a derived entity",
		property, entity)
}

// NewNullableKey creates an MDL014 error
func NewNullableKey(entity, property string) *MetadataError {
	return newError(CodeNullableKey, ErrNullableKey, entity,
		"the property '%s' on the entity '%s' cannot be marked as nullable because it is part of a key", property, entity)
}

// NewForeignKeyPropertiesWrongEntity creates an MDL015 error
func NewForeignKeyPropertiesWrongEntity(properties []*Property, entity string) *MetadataError {
	return newError(CodeForeignKeyPropertiesWrongEntity, ErrForeignKeyPropertiesWrongEntity, entity,
		"the specified foreign key properties %s are not declared on the entity '%s'", formatProperties(properties), entity)
}

// NewForeignKeyPropertyInKey creates an MDL016 error
func NewForeignKeyPropertyInKey(property, entity string) *MetadataError {
	return newError(CodeForeignKeyPropertyInKey, ErrForeignKeyPropertyInKey, entity,
		"the property '%s' cannot be part of a foreign key on '%s' because it is contained in a key defined on a base entity",
		property, entity)
}

// NewForeignKeyCountMismatch creates an MDL017 error
func NewForeignKeyCountMismatch(dependent []*Property, dependentEntity string, principal []*Property, principalEntity string) *MetadataError {
	return newError(CodeForeignKeyCountMismatch, ErrForeignKeyCountMismatch, dependentEntity,
		"the number of properties specified for the foreign key %s on the entity '%s' does not match the number of properties in the principal key %s on the entity '%s'",
		formatProperties(dependent), dependentEntity, formatProperties(principal), principalEntity)
}

// NewForeignKeyTypeMismatch creates an MDL018 error
func NewForeignKeyTypeMismatch(dependent []*Property, dependentEntity string, principal []*Property, principalEntity string) *MetadataError {
	return newError(CodeForeignKeyTypeMismatch, ErrForeignKeyTypeMismatch, dependentEntity,
		"the types of the properties specified for the foreign key %s on the entity '%s' do not match the types of the properties in the principal key %s on the entity '%s'",
		formatProperties(dependent), dependentEntity, formatProperties(principal), principalEntity)
}

// NewForeignKeyReferencedEntityKeyMismatch creates an MDL019 error
func NewForeignKeyReferencedEntityKeyMismatch(principalKey []*Property, principalEntity string) *MetadataError {
	return newError(CodeForeignKeyReferencedEntityKey, ErrForeignKeyReferencedEntityKey, principalEntity,
		"the provided principal key %s is not a key on the entity '%s'", formatProperties(principalKey), principalEntity)
}

// NewConflictingProperty creates an MDL020 error
func NewConflictingProperty(navigation, entity, duplicateEntity string) *MetadataError {
	return newError(CodeConflictingProperty, ErrConflictingProperty, entity,
		"the navigation '%s' cannot be added to the entity '%s' because a property with the same name already exists on the entity '%s'",
		navigation, entity, duplicateEntity)
}

// NewIncoherentAssociationTableNames creates an MDL021 error
func NewIncoherentAssociationTableNames(entity, navigation, inverse string) *MetadataError {
	return newError(CodeIncoherentAssociationTableNames, ErrIncoherentAssociationTableNames, entity,
		"the navigation '%s' on the entity '%s' and its inverse '%s' declare different association table names",
		navigation, entity, inverse)
}

// NewInvalidEntityType creates an MDL022 error
func NewInvalidEntityType(typeName string, cause error) *MetadataError {
	return newError(CodeInvalidEntityType, ErrInvalidEntityType, typeName,
		"the type '%s' cannot be used as an entity type: %v", typeName, cause)
}

// NewMissingPrimaryKey creates an MDL023 error
func NewMissingPrimaryKey(entity, linkedEntity string) *MetadataError {
	return newError(CodeMissingPrimaryKey, ErrMissingPrimaryKey, entity,
		"the entity '%s' must have a primary key to take part in the association '%s'", entity, linkedEntity)
}

// NewConflictingColumnServerGeneration creates an MDL024 error
func NewConflictingColumnServerGeneration(conflicting, property, existing string) *MetadataError {
	return newError(CodeConflictingColumnServerGeneration, ErrConflictingColumnServerGeneration, "",
		"%s cannot be set for '%s' at the same time as %s; remove one of these values", conflicting, property, existing)
}

// NewDuplicateProperty creates an MDL025 error
func NewDuplicateProperty(property, entity, duplicateEntity string) *MetadataError {
	return newError(CodeDuplicateProperty, ErrDuplicateProperty, entity,
		"the property '%s' cannot be added to the entity '%s' because a member with the same name already exists on the entity '%s'",
		property, entity, duplicateEntity)
}

// NewCircularInheritance creates an MDL026 error
func NewCircularInheritance(entity, baseType string) *MetadataError {
	return newError(CodeCircularInheritance, ErrCircularInheritance, entity,
		"the entity '%s' cannot derive from '%s' because '%s' already derives from it", entity, baseType, baseType)
}
