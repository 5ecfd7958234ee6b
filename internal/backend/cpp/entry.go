package cpp

import (
	"fmt"
	"strings"

	"cscpp/internal/diag"
	"cscpp/internal/syntax"
)

// Profile selects the shape of the synthesized entry point.
type Profile uint8

const (
	// ProfileHosted emits int main().
	ProfileHosted Profile = iota
	// ProfileDevice emits an Arduino-style setup()/loop() pair.
	ProfileDevice
)

func (p Profile) String() string {
	switch p {
	case ProfileHosted:
		return "hosted"
	case ProfileDevice:
		return "device"
	default:
		return fmt.Sprintf("Profile(%d)", uint8(p))
	}
}

// ParseProfile accepts "hosted" and "device" (plus "host" and "arduino").
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hosted", "host":
		return ProfileHosted, nil
	case "device", "arduino", "embedded":
		return ProfileDevice, nil
	default:
		return ProfileHosted, fmt.Errorf("unknown profile %q (want hosted or device)", s)
	}
}

// EntryPoint names the method the entry function calls. Namespace and Class
// may be dotted for nested declarations; Namespace may be empty.
type EntryPoint struct {
	Namespace string
	Class     string
	Method    string
}

// ParseEntryPoint splits "NS.C.M": the last segment is the method, the one
// before it the class, everything before that the namespace.
func ParseEntryPoint(s string) (EntryPoint, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	for _, p := range parts {
		if p == "" {
			return EntryPoint{}, fmt.Errorf("invalid entry point %q", s)
		}
	}
	if len(parts) < 2 {
		return EntryPoint{}, fmt.Errorf("invalid entry point %q: want Namespace.Class.Method or Class.Method", s)
	}
	n := len(parts)
	return EntryPoint{
		Namespace: strings.Join(parts[:n-2], "."),
		Class:     parts[n-2],
		Method:    parts[n-1],
	}, nil
}

func (e EntryPoint) String() string {
	if e.Namespace == "" {
		return e.Class + "." + e.Method
	}
	return e.Namespace + "." + e.Class + "." + e.Method
}

// Qualified is the C++ spelling of the call target, e.g. NS::C::M.
func (e EntryPoint) Qualified() string {
	return qualify(e.String())
}

type entryCandidate struct {
	entry  EntryPoint
	id     syntax.NodeID
	node   *syntax.Node
	static bool
	params int
}

// Discover resolves the entry point in t. With want set it checks that the
// named method exists, is static and takes no parameters. Without it, the
// single static parameterless Main is used.
func Discover(t *syntax.Tree, want *EntryPoint) (EntryPoint, error) {
	candidates := collectMethods(t)
	if want != nil {
		return discoverNamed(t, candidates, *want)
	}

	var mains []entryCandidate
	for _, c := range candidates {
		if c.entry.Method == "Main" && c.static && c.params == 0 {
			mains = append(mains, c)
		}
	}
	switch len(mains) {
	case 0:
		root := t.Node(t.Root)
		return EntryPoint{}, newError(diag.GenEntryPointNotFound, ErrEntryPointNotFound, root, t.Root,
			"no static parameterless Main method found")
	case 1:
		return mains[0].entry, nil
	default:
		e := newError(diag.GenMultipleEntryPoints, ErrMultipleEntryPoints, mains[1].node, mains[1].id,
			fmt.Sprintf("found %d Main methods; choose one with an explicit entry", len(mains)))
		for _, c := range mains {
			e.Notes = append(e.Notes, diag.Note{Span: c.node.Span, Msg: c.entry.String()})
		}
		return EntryPoint{}, e
	}
}

func discoverNamed(t *syntax.Tree, candidates []entryCandidate, want EntryPoint) (EntryPoint, error) {
	var match *entryCandidate
	for i := range candidates {
		c := &candidates[i]
		if c.entry != want {
			continue
		}
		// overloads: prefer the callable one
		if match == nil || (c.static && c.params == 0) {
			match = c
		}
	}
	if match == nil {
		root := t.Node(t.Root)
		return EntryPoint{}, newError(diag.GenEntryPointNotFound, ErrEntryPointNotFound, root, t.Root,
			fmt.Sprintf("entry point %s not found", want))
	}
	if !match.static {
		return EntryPoint{}, newError(diag.GenEntryPointNotStatic, ErrEntryPointNotStatic, match.node, match.id,
			fmt.Sprintf("entry point %s must be static", want))
	}
	if match.params != 0 {
		return EntryPoint{}, newError(diag.GenEntryPointSignature, ErrEntryPointSignature, match.node, match.id,
			fmt.Sprintf("entry point %s must take no parameters", want))
	}
	return match.entry, nil
}

func collectMethods(t *syntax.Tree) []entryCandidate {
	var out []entryCandidate
	syntax.Inspect(t, t.Root, func(id syntax.NodeID, n *syntax.Node, ancestors []syntax.NodeID) bool {
		if n.Kind != syntax.KindMethodDecl {
			return n.Kind == syntax.KindCompilationUnit || n.Kind == syntax.KindNamespaceDecl || n.Kind == syntax.KindClassDecl
		}
		var namespaces, classes []string
		for _, a := range ancestors {
			an := t.Node(a)
			switch an.Kind {
			case syntax.KindNamespaceDecl:
				namespaces = append(namespaces, an.Text)
			case syntax.KindClassDecl:
				classes = append(classes, an.Text)
			}
		}
		if len(classes) == 0 {
			return false
		}
		// nested classes fold into Class: Outer.Inner
		out = append(out, entryCandidate{
			entry: EntryPoint{
				Namespace: strings.Join(namespaces, "."),
				Class:     strings.Join(classes, "."),
				Method:    n.Text,
			},
			id:     id,
			node:   n,
			static: t.HasModifier(id, "static"),
			params: len(t.Children(t.Child(id, 1))),
		})
		return false
	})
	return out
}

// Synthesize appends the entry function for profile to unit. It cannot fail.
func Synthesize(unit string, entry EntryPoint, profile Profile, indent string) string {
	call := indent + entry.Qualified() + "();\n"
	var b strings.Builder
	b.Grow(len(unit) + 64)
	b.WriteString(unit)
	if unit != "" && !strings.HasSuffix(unit, "\n") {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	switch profile {
	case ProfileDevice:
		b.WriteString("void setup()\n{\n")
		b.WriteString(call)
		b.WriteString("}\n\nvoid loop()\n{\n}\n")
	default:
		b.WriteString("int main()\n{\n")
		b.WriteString(call)
		b.WriteString("}\n")
	}
	return b.String()
}
