package vm

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// ---------------------------------------------------------------------------
// Host capability tables
// ---------------------------------------------------------------------------

// Type is the declared type of a host member, parameter or return value.
type Type uint8

const (
	TypeInt         Type = iota + 1 // non-nullable int
	TypeNullableInt                 // int or null
	TypeString                      // string or null
	TypeObject                      // host object or null
	TypeAny                         // any value, passed through
	TypeVoid                        // method returns nothing
)

var typeNames = map[Type]string{
	TypeInt:         "int",
	TypeNullableInt: "int?",
	TypeString:      "string",
	TypeObject:      "object",
	TypeAny:         "any",
	TypeVoid:        "void",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Property is a host member with a getter and an optional setter.
type Property struct {
	Name    string
	Type    Type
	Exposed bool
	Get     func(obj any) Value
	Set     func(obj any, v Value) error // nil when read-only
}

// Field is a plain host data member; fields are always writable.
type Field struct {
	Name    string
	Type    Type
	Exposed bool
	Get     func(obj any) Value
	Set     func(obj any, v Value)
}

// Method is one overload of a host method. Invoke receives arguments
// already coerced to Params.
type Method struct {
	Name    string
	Params  []Type
	Returns Type
	Exposed bool
	Invoke  func(obj any, args []Value) (Value, error)
}

// HostType is the capability table for one Go type: the members that may be
// exposed to scripts, each with a typed accessor. A member is visible to
// script code only if it is Exposed itself or the HostType is Exposed.
type HostType struct {
	Name    string
	Exposed bool

	goType     reflect.Type
	properties map[string]*Property
	fields     map[string]*Field
	methods    []*Method // discovery order; overloads share a name
}

// DefineHostType creates an empty capability table for host objects of
// type T. exposed marks every member of the type as script-accessible.
func DefineHostType[T any](name string, exposed bool) *HostType {
	return &HostType{
		Name:       name,
		Exposed:    exposed,
		goType:     reflect.TypeOf((*T)(nil)).Elem(),
		properties: make(map[string]*Property),
		fields:     make(map[string]*Field),
	}
}

// GoType returns the Go type this table describes.
func (t *HostType) GoType() reflect.Type { return t.goType }

// AddProperty registers a property.
func (t *HostType) AddProperty(p Property) *HostType {
	t.properties[p.Name] = &p
	return t
}

// AddField registers a field.
func (t *HostType) AddField(f Field) *HostType {
	t.fields[f.Name] = &f
	return t
}

// AddMethod registers a method overload.
func (t *HostType) AddMethod(m Method) *HostType {
	t.methods = append(t.methods, &m)
	return t
}

func (t *HostType) exposes(member bool) bool {
	return member || t.Exposed
}

// Get reads an exposed property, falling back to an exposed field.
func (t *HostType) Get(obj any, name string) (Value, error) {
	if p, ok := t.properties[name]; ok && p.Get != nil && t.exposes(p.Exposed) {
		return p.Get(obj), nil
	}
	if f, ok := t.fields[name]; ok && t.exposes(f.Exposed) {
		return f.Get(obj), nil
	}
	return Null, fmt.Errorf("%w: member %q on type %q", ErrNotAccessible, name, t.Name)
}

// Set writes an exposed, writable property or an exposed field, coercing v
// to the member's declared type first.
func (t *HostType) Set(obj any, name string, v Value) error {
	if p, ok := t.properties[name]; ok && p.Set != nil && t.exposes(p.Exposed) {
		cv, err := Coerce(v, p.Type)
		if err != nil {
			return fmt.Errorf("assigning %s.%s: %w", t.Name, name, err)
		}
		return p.Set(obj, cv)
	}
	if f, ok := t.fields[name]; ok && t.exposes(f.Exposed) {
		cv, err := Coerce(v, f.Type)
		if err != nil {
			return fmt.Errorf("assigning %s.%s: %w", t.Name, name, err)
		}
		f.Set(obj, cv)
		return nil
	}
	return fmt.Errorf("%w: member %q on type %q", ErrNotWritable, name, t.Name)
}

// Call resolves an overload by exact name and arity among exposed methods,
// invoking the first (in registration order) whose parameters accept every
// argument after coercion. Void methods yield Null. With no exposed
// candidate of that name and arity the error is ErrNotAccessible; with
// candidates that all reject the arguments it is ErrNoOverload.
func (t *HostType) Call(obj any, name string, args []Value) (Value, error) {
	candidates := 0
	for _, m := range t.methods {
		if m.Name != name || len(m.Params) != len(args) || !t.exposes(m.Exposed) {
			continue
		}
		candidates++
		converted, ok := coerceArgs(args, m.Params)
		if !ok {
			continue
		}
		result, err := m.Invoke(obj, converted)
		if err != nil {
			return Null, fmt.Errorf("%s.%s: %w", t.Name, name, err)
		}
		if m.Returns == TypeVoid {
			return Null, nil
		}
		return result, nil
	}
	if candidates == 0 {
		return Null, fmt.Errorf("%w: method %s.%s/%d", ErrNotAccessible, t.Name, name, len(args))
	}
	return Null, fmt.Errorf("%w: %s.%s/%d", ErrNoOverload, t.Name, name, len(args))
}

func coerceArgs(args []Value, params []Type) ([]Value, bool) {
	out := make([]Value, len(args))
	for i, a := range args {
		cv, err := Coerce(a, params[i])
		if err != nil {
			return nil, false
		}
		out[i] = cv
	}
	return out, true
}

// Coerce converts v to the destination type. Null only targets nullable or
// reference types; values already of the destination kind pass through;
// otherwise int<->string conversion is attempted.
func Coerce(v Value, to Type) (Value, error) {
	if to == TypeAny {
		return v, nil
	}
	if v.kind == KindNull {
		switch to {
		case TypeNullableInt, TypeString, TypeObject:
			return Null, nil
		}
		return Null, fmt.Errorf("%w: cannot assign null to %s", ErrCoercion, to)
	}

	switch to {
	case TypeInt, TypeNullableInt:
		switch v.kind {
		case KindInt:
			return v, nil
		case KindString:
			n, err := strconv.ParseInt(v.s, 10, 32)
			if err != nil {
				return Null, fmt.Errorf("%w: %q to %s", ErrCoercion, v.s, to)
			}
			return Int(int32(n)), nil
		}
	case TypeString:
		switch v.kind {
		case KindString:
			return v, nil
		case KindInt:
			return String(v.String()), nil
		}
	case TypeObject:
		if v.kind == KindObject {
			return v, nil
		}
	}
	return Null, fmt.Errorf("%w: %s to %s", ErrCoercion, v.kind, to)
}

// ---------------------------------------------------------------------------
// HostRegistry
// ---------------------------------------------------------------------------

// HostRegistry maps Go types to their capability tables. Tables are built
// once at registration and read-only afterwards. Safe for concurrent use.
type HostRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*HostType
}

// NewHostRegistry creates an empty registry.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		byType: make(map[reflect.Type]*HostType),
	}
}

// Register adds a capability table. If the Go type is already registered,
// the existing table is returned unchanged.
func (r *HostRegistry) Register(t *HostType) *HostType {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byType[t.goType]; ok {
		return existing
	}
	r.byType[t.goType] = t
	return t
}

// Lookup returns the capability table for a host object, or nil.
func (r *HostRegistry) Lookup(obj any) *HostType {
	if obj == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[reflect.TypeOf(obj)]
}

// Count returns the number of registered types.
func (r *HostRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType)
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Resolver looks up host objects by name. It is consulted once per
// LOAD_OBJECT instruction, on every execution.
type Resolver interface {
	GetObject(name string) (any, bool)
}

// Objects is a map-backed Resolver.
type Objects map[string]any

// GetObject implements Resolver.
func (o Objects) GetObject(name string) (any, bool) {
	obj, ok := o[name]
	return obj, ok
}
