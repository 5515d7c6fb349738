// Completion: 100% - struct layout tests
package loom

import "testing"

func TestFieldOffsetsFollowDeclarationOrder(t *testing.T) {
	r := newStructRegistry()
	layout := r.Register(&TypeDecl{
		Name: "Point",
		Fields: []FieldDef{
			{Name: "x", TypeName: "int"},
			{Name: "y", TypeName: "float"},
			{Name: "label", TypeName: "string"},
		},
	})

	tests := []struct {
		field  string
		offset int64
		kind   fieldKind
	}{
		{"x", 0, fieldInt},
		{"y", 8, fieldFloat},
		{"label", 16, fieldPtr},
	}
	for _, tt := range tests {
		f, ok := layout.Field(tt.field)
		if !ok {
			t.Fatalf("field %s not found", tt.field)
		}
		if f.Offset != tt.offset {
			t.Errorf("%s offset = %d, want %d", tt.field, f.Offset, tt.offset)
		}
		if f.Kind != tt.kind {
			t.Errorf("%s kind = %d, want %d", tt.field, f.Kind, tt.kind)
		}
	}
	if layout.Size != 24 {
		t.Errorf("size = %d, want 24", layout.Size)
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	decl := &TypeDecl{
		Name: "Rec",
		Fields: []FieldDef{
			{Name: "a", TypeName: "int"},
			{Name: "b", TypeName: "int"},
			{Name: "c", TypeName: "int"},
		},
	}
	first := newStructRegistry().Register(decl)
	for i := 0; i < 10; i++ {
		again := newStructRegistry().Register(decl)
		for j, f := range again.Fields {
			if f.Offset != first.Fields[j].Offset {
				t.Fatalf("run %d: field %s offset %d, want %d",
					i, f.Name, f.Offset, first.Fields[j].Offset)
			}
		}
	}
}

func TestStructTypedFieldKeepsTypeName(t *testing.T) {
	r := newStructRegistry()
	r.Register(&TypeDecl{Name: "Inner", Fields: []FieldDef{{Name: "v", TypeName: "int"}}})
	outer := r.Register(&TypeDecl{Name: "Outer", Fields: []FieldDef{{Name: "inner", TypeName: "Inner"}}})

	f, ok := outer.Field("inner")
	if !ok {
		t.Fatal("field inner not found")
	}
	if f.Kind != fieldStruct || f.StructName != "Inner" {
		t.Errorf("inner = kind %d name %q, want struct Inner", f.Kind, f.StructName)
	}
}

func TestFindFieldScansInRegistrationOrder(t *testing.T) {
	r := newStructRegistry()
	r.Register(&TypeDecl{Name: "A", Fields: []FieldDef{
		{Name: "x", TypeName: "int"},
		{Name: "shared", TypeName: "int"},
	}})
	r.Register(&TypeDecl{Name: "B", Fields: []FieldDef{
		{Name: "shared", TypeName: "int"},
	}})

	layout, f, ok := r.FindField("shared")
	if !ok {
		t.Fatal("shared not found")
	}
	// A registered first, so its offset 8 wins over B's 0.
	if layout.Name != "A" || f.Offset != 8 {
		t.Errorf("found shared in %s at %d, want A at 8", layout.Name, f.Offset)
	}
}
