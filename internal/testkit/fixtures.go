package testkit

import (
	"cscpp/internal/syntax"
)

// ScenarioTree builds: using Foo; namespace NS { class C { <mods> void M() {} } }.
// With no mods it uses public static.
func ScenarioTree(mods ...string) *syntax.Tree {
	if len(mods) == 0 {
		mods = []string{"public", "static"}
	}
	b := syntax.NewBuilder("Program.cs", 0, 0)
	m := b.Method(mods, b.Predefined("void"), "M", nil, b.Block())
	ns := b.Namespace("NS", b.Class("C", nil, m))
	return b.Finish(b.Unit([]syntax.NodeID{b.Using("Foo")}, ns))
}

// ScenarioHosted is the expected hosted rendering of ScenarioTree().
const ScenarioHosted = "#include <Foo.h>\n" +
	"\n" +
	"namespace NS\n" +
	"{\n" +
	"\tclass C\n" +
	"\t{\n" +
	"\t\tpublic:\n" +
	"\t\tstatic void M()\n" +
	"\t\t{\n" +
	"\t\t}\n" +
	"\t};\n" +
	"}\n" +
	"\n" +
	"int main()\n" +
	"{\n" +
	"\tNS::C::M();\n" +
	"}\n"

// ScenarioDeviceTail is how the device rendering of ScenarioTree() ends.
const ScenarioDeviceTail = "\t};\n" +
	"}\n" +
	"\n" +
	"void setup()\n" +
	"{\n" +
	"\tNS::C::M();\n" +
	"}\n" +
	"\n" +
	"void loop()\n" +
	"{\n" +
	"}\n"

// MethodTree wraps one method with the given parameters and body statements
// into namespace NS, class C. Callers add nodes through b before calling.
func MethodTree(b *syntax.Builder, mods []string, params []syntax.NodeID, stmts ...syntax.NodeID) *syntax.Tree {
	m := b.Method(mods, b.Predefined("void"), "M", params, b.Block(stmts...))
	ns := b.Namespace("NS", b.Class("C", nil, m))
	return b.Finish(b.Unit(nil, ns))
}

// DeepCallTree nests depth member accesses inside one call statement.
func DeepCallTree(depth int) *syntax.Tree {
	b := syntax.NewBuilder("deep.cs", 0, uint(depth)*2+16)
	expr := b.Ident("a")
	for range depth {
		expr = b.Member(expr, "b")
	}
	stmt := b.ExprStmt(b.Invoke(expr))
	return MethodTree(b, []string{"static"}, nil, stmt)
}
