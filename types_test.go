package slint

import "testing"

func TestCanConvertNumeric(t *testing.T) {
	if !Int32Type.CanConvert(Float32Type) {
		t.Error("int -> float")
	}
	if !Float32Type.CanConvert(Int32Type) {
		t.Error("float -> int")
	}
	if !DurationType.CanConvert(StringType) {
		t.Error("numeric -> string")
	}
	if StringType.CanConvert(Int32Type) {
		t.Error("string -> int must fail")
	}
	if !PercentType.CanConvert(Float32Type) || !Float32Type.CanConvert(PercentType) {
		t.Error("percent <-> float")
	}
	if DurationType.CanConvert(AngleType) {
		t.Error("duration -> angle must fail")
	}
	if !PhysicalLengthType.CanConvert(LogicalLengthType) {
		t.Error("physical -> logical length")
	}
}

func TestCanConvertComposite(t *testing.T) {
	if !ArrayType(Int32Type).CanConvert(ArrayType(Float32Type)) {
		t.Error("[int] -> [float]")
	}
	if ArrayType(StringType).CanConvert(ArrayType(BoolType)) {
		t.Error("[string] -> [bool] must fail")
	}

	full := &Type{Kind: TypeStruct, Fields: map[string]*Type{
		"x": Float32Type, "y": Float32Type, "label": StringType,
	}}
	partial := &Type{Kind: TypeStruct, Fields: map[string]*Type{
		"x": Float32Type, "y": Float32Type,
	}}
	other := &Type{Kind: TypeStruct, Fields: map[string]*Type{
		"x": Float32Type, "z": Float32Type,
	}}
	if !partial.CanConvert(full) {
		t.Error("missing fields only is fine")
	}
	if !full.CanConvert(partial) {
		t.Error("extra fields only is fine")
	}
	if other.CanConvert(full) {
		t.Error("missing and extra fields together must fail")
	}
	mismatched := &Type{Kind: TypeStruct, Fields: map[string]*Type{
		"x": StringType, "y": Float32Type,
	}}
	if mismatched.CanConvert(partial) {
		t.Error("incompatible field types must fail")
	}
}

func TestOperatorResultType(t *testing.T) {
	tests := []struct {
		op       byte
		lhs, rhs *Type
		want     *Type
	}{
		{'+', Float32Type, Float32Type, Float32Type},
		{'+', Int32Type, Float32Type, Float32Type},
		{'+', LogicalLengthType, LogicalLengthType, LogicalLengthType},
		{'+', LogicalLengthType, Float32Type, InvalidType},
		{'+', StringType, StringType, StringType},
		{'-', DurationType, DurationType, DurationType},
		{'*', LogicalLengthType, Float32Type, LogicalLengthType},
		{'*', Float32Type, DurationType, DurationType},
		{'*', DurationType, LogicalLengthType, InvalidType},
		{'/', LogicalLengthType, LogicalLengthType, Float32Type},
		{'/', LogicalLengthType, Float32Type, LogicalLengthType},
		{'/', Float32Type, LogicalLengthType, InvalidType},
		{'+', BoolType, Float32Type, InvalidType},
	}
	for _, tt := range tests {
		got := OperatorResultType(tt.op, tt.lhs, tt.rhs)
		if got.Kind != tt.want.Kind {
			t.Errorf("%s %c %s: got %s, want %s", tt.lhs, tt.op, tt.rhs, got, tt.want)
		}
	}
}

func TestTypeRegisterChain(t *testing.T) {
	parent := NewTypeRegister(nil)
	if err := parent.Register("Rectangle", &Type{Kind: TypeBuiltinItem, Name: "Rectangle"}); err != nil {
		t.Fatal(err)
	}
	child := NewTypeRegister(parent)
	if err := child.Register("Button", &Type{Kind: TypeComponent, Name: "Button"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := child.Lookup("Rectangle"); !ok {
		t.Error("lookup must reach the parent register")
	}
	if _, ok := parent.Lookup("Button"); ok {
		t.Error("parent must not see child registrations")
	}
	if err := child.Register("Button", &Type{Kind: TypeComponent}); err == nil {
		t.Error("duplicate registration must fail")
	}
	if _, ok := child.Lookup("Nope"); ok {
		t.Error("unknown name")
	}
}

func TestTypeStrings(t *testing.T) {
	if s := ArrayType(StringType).String(); s != "[string]" {
		t.Errorf("array: %q", s)
	}
	cb := CallbackType(BoolType, Int32Type, StringType)
	if s := cb.String(); s != "callback(int,string)->bool" {
		t.Errorf("callback: %q", s)
	}
	anon := &Type{Kind: TypeStruct,
		Fields:     map[string]*Type{"x": Float32Type},
		FieldOrder: []string{"x"},
	}
	if s := anon.String(); s != "{ x: float }" {
		t.Errorf("anonymous struct: %q", s)
	}
}

func TestSplitNumberLiteral(t *testing.T) {
	tests := []struct {
		text   string
		value  float64
		unit   string
		factor float64
	}{
		{"42", 42, "", 0},
		{"1.5", 1.5, "", 0},
		{"42px", 42, "px", 1},
		{"2s", 2, "s", 1000},
		{"250ms", 250, "ms", 1},
		{"50%", 50, "%", 1},
		{"0.5turn", 0.5, "turn", 360},
	}
	for _, tt := range tests {
		v, u := SplitNumberLiteral(tt.text)
		if v != tt.value {
			t.Errorf("%s: value %v", tt.text, v)
			continue
		}
		if tt.unit == "" {
			if u != nil {
				t.Errorf("%s: unexpected unit %v", tt.text, u)
			}
			continue
		}
		if u == nil || u.Suffix != tt.unit || u.Factor != tt.factor {
			t.Errorf("%s: unit %+v", tt.text, u)
		}
	}
}

func TestParseColorLiteral(t *testing.T) {
	tests := []struct {
		text string
		want uint32
		ok   bool
	}{
		{"#fff", 0xffffffff, true},
		{"#112233", 0xff112233, true},
		{"#11223344", 0x44112233, true},
		{"#12", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseColorLiteral(tt.text)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("%s: got %08x err=%v", tt.text, got, err)
		}
	}
}
