// Completion: 100% - struct layout registry
package loom

// fieldKind is the declared kind of a struct field. Every field
// occupies one 8-byte word regardless of kind; the kind only guides
// typed loads, printing and float coercion.
type fieldKind int

const (
	fieldInt fieldKind = iota
	fieldFloat
	fieldPtr
	fieldStruct
)

// fieldLayout holds the byte offset and kind of one field.
type fieldLayout struct {
	Name       string
	Offset     int64
	Kind       fieldKind
	StructName string // set when Kind is fieldStruct
}

// structLayout describes the flat in-memory layout of a struct type:
// fields at offsets 0, 8, 16, ... in declaration order.
type structLayout struct {
	Name   string
	Fields []fieldLayout
	Size   int64
}

// Field looks up a field by name.
func (s *structLayout) Field(name string) (fieldLayout, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return fieldLayout{}, false
}

// structRegistry maps type names to layouts. Registration order is
// kept so lookups that scan all types are deterministic.
type structRegistry struct {
	byName map[string]*structLayout
	order  []string
}

func newStructRegistry() *structRegistry {
	return &structRegistry{byName: make(map[string]*structLayout)}
}

// Register computes and stores the layout for a type declaration.
// Registering the same name again replaces the previous layout.
func (r *structRegistry) Register(decl *TypeDecl) *structLayout {
	layout := &structLayout{Name: decl.Name}
	var offset int64
	for _, fd := range decl.Fields {
		fl := fieldLayout{Name: fd.Name, Offset: offset}
		switch fd.TypeName {
		case "int", "bool":
			fl.Kind = fieldInt
		case "float":
			fl.Kind = fieldFloat
		case "string", "list":
			fl.Kind = fieldPtr
		default:
			fl.Kind = fieldStruct
			fl.StructName = fd.TypeName
		}
		layout.Fields = append(layout.Fields, fl)
		offset += 8
	}
	layout.Size = offset
	if _, seen := r.byName[decl.Name]; !seen {
		r.order = append(r.order, decl.Name)
	}
	r.byName[decl.Name] = layout
	return layout
}

// Lookup returns the layout for a type name.
func (r *structRegistry) Lookup(name string) (*structLayout, bool) {
	l, ok := r.byName[name]
	return l, ok
}

// FindField scans all registered types in registration order and
// returns the first layout declaring a field with the given name.
// Programs that reuse a field name across types get the earliest
// declaration's offset.
func (r *structRegistry) FindField(name string) (*structLayout, fieldLayout, bool) {
	for _, tn := range r.order {
		l := r.byName[tn]
		if f, ok := l.Field(name); ok {
			return l, f, true
		}
	}
	return nil, fieldLayout{}, false
}
