package compiler

// Sample is a catalogued example program.
type Sample struct {
	Name string
	Code string
	// Fails is set for programs that must be rejected, with the kind of error.
	Fails bool
	Kind  ErrorKind
}

// Samples is the classroom program list, valid programs first.
var Samples = []Sample{
	{Name: "Addition", Code: "{\n\tint a\n\ta = 4\n\n\tint b\n\tb = 2 + a\n} $"},
	{Name: "String", Code: "{\n\tint a\n\ta = 4\n\tif (a == 4) {\n\t\tprint(\"hello world\")\n\t}\n} $"},
	{Name: "If 1", Code: "{\n\tif (1 == 1) {\n\t\tint a\n\t\ta = 1\n\t}\n} $"},
	{Name: "If 2", Code: "{\n\tif (1 != 2) {\n\t\tint a\n\t\ta = 1\n\t}\n} $"},
	{Name: "If 3", Code: "{\n\tint a\n\ta = 1\n\n\tif(a == 1) {\n\t\ta = 2\n\t}\n\n\tif(a != 1) {\n\t\ta = 3\n\t}\n} $"},
	{Name: "While", Code: "{\n\tint x\n\tx = 0\n\n\twhile (x != 5) \n\t{\n\t\tprint(x)\n\t\tx = 1 + x\n\t}\n} $"},
	{Name: "Boolean", Code: "{\n\tint a\n\ta = 1\n\n\tboolean b\n\tb = (true == (true != (false == (true != (false != (a == a))))))\n\n\tprint(b)\n} $"},
	{Name: "Scopes", Code: "{\n\tint a\n\ta = 1\n\t{\n\t\tstring a\n\t\ta = \"inner\"\n\t\tprint(a)\n\t}\n\tprint(a)\n} $"},

	{Name: "Type Assignment Error", Code: "{\n\tint 7\n\ta = 4\n\n\tint b\n\tb = 2 + a\n} $", Fails: true, Kind: ErrUnexpectedToken},
	{Name: "Boolean Error", Code: "{\n\tint a\n\ta = 4\n\tif (a = 4) {\n\t\tprint(\"hello world\")\n\t}\n} $", Fails: true, Kind: ErrBadBoolOp},
	{Name: "Unknown Lexeme Error", Code: "{\n\tint a\n\ta = 1\n\n\tif(a == 1) {\n\t\ta = 2\n\t}\n\n\telse(a != 1) {\n\t\ta = 3\n\t}\n} $", Fails: true, Kind: ErrMalformedFragment},
	{Name: "Missing Brace/Parenthesis Error", Code: "{\n\tint a\n\ta = 4\n\n\tint b\n\tb = 2 + a\n $", Fails: true, Kind: ErrUnexpectedToken},
	{Name: "Integer over Digit Error", Code: "{\n\tint a\n\ta = 42\n\n\tint b\n\tb = 2 + a\n} $", Fails: true, Kind: ErrMalformedFragment},
	{Name: "Type Mismatch Error", Code: "{\n\tint a\n\ta = \"hi\"\n} $", Fails: true, Kind: ErrTypeMismatch},
	{Name: "Undeclared Error", Code: "{\n\ta = 1\n} $", Fails: true, Kind: ErrUndeclared},
}

// LookupSample finds a sample by name.
func LookupSample(name string) (Sample, bool) {
	for _, s := range Samples {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
