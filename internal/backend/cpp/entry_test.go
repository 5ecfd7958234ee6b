package cpp

import (
	"errors"
	"strings"
	"testing"

	"cscpp/internal/syntax"
	"cscpp/internal/testkit"
)

func TestParseEntryPoint(t *testing.T) {
	tests := []struct {
		in      string
		want    EntryPoint
		qual    string
		wantErr bool
	}{
		{in: "NS.C.M", want: EntryPoint{"NS", "C", "M"}, qual: "NS::C::M"},
		{in: "A.B.C.Main", want: EntryPoint{"A.B", "C", "Main"}, qual: "A::B::C::Main"},
		{in: "Program.Main", want: EntryPoint{"", "Program", "Main"}, qual: "Program::Main"},
		{in: " NS.C.M ", want: EntryPoint{"NS", "C", "M"}, qual: "NS::C::M"},
		{in: "Main", wantErr: true},
		{in: "", wantErr: true},
		{in: "NS..M", wantErr: true},
		{in: "NS.C.", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseEntryPoint(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseEntryPoint(%q) = %+v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEntryPoint(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want || got.Qualified() != tt.qual {
			t.Errorf("ParseEntryPoint(%q) = %+v (%s), want %+v (%s)", tt.in, got, got.Qualified(), tt.want, tt.qual)
		}
	}
}

func TestParseProfile(t *testing.T) {
	tests := map[string]Profile{
		"":         ProfileHosted,
		"hosted":   ProfileHosted,
		"Host":     ProfileHosted,
		"device":   ProfileDevice,
		"arduino":  ProfileDevice,
		"EMBEDDED": ProfileDevice,
	}
	for in, want := range tests {
		got, err := ParseProfile(in)
		if err != nil || got != want {
			t.Errorf("ParseProfile(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseProfile("cuda"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
	if ProfileDevice.String() != "device" || Profile(7).String() != "Profile(7)" {
		t.Fatalf("unexpected Profile strings")
	}
}

// programTree: namespace App { class P { static void Main(); void Run(); static void Args(int n); } class Q { static void Main(); } }
func programTree(withSecondMain bool) *syntax.Tree {
	b := syntax.NewBuilder("app.cs", 0, 0)
	void := func() syntax.NodeID { return b.Predefined("void") }
	mainP := b.Method([]string{"public", "static"}, void(), "Main", nil, syntax.NoNodeID)
	run := b.Method([]string{"public"}, void(), "Run", nil, syntax.NoNodeID)
	args := b.Method([]string{"static"}, void(), "Args", []syntax.NodeID{b.Param(b.Predefined("int"), "n")}, syntax.NoNodeID)
	inner := b.Class("Inner", nil, b.Method([]string{"static"}, void(), "Go", nil, syntax.NoNodeID))
	members := []syntax.NodeID{b.Class("P", nil, mainP, run, args, inner)}
	if withSecondMain {
		members = append(members, b.Class("Q", nil, b.Method([]string{"static"}, void(), "Main", nil, syntax.NoNodeID)))
	}
	return b.Finish(b.Unit(nil, b.Namespace("App", members...)))
}

func TestDiscoverNamed(t *testing.T) {
	tree := programTree(false)
	tests := []struct {
		name string
		want EntryPoint
		err  error
	}{
		{"found", EntryPoint{"App", "P", "Main"}, nil},
		{"nested class", EntryPoint{"App", "P.Inner", "Go"}, nil},
		{"missing", EntryPoint{"App", "P", "Nope"}, ErrEntryPointNotFound},
		{"wrong namespace", EntryPoint{"Other", "P", "Main"}, ErrEntryPointNotFound},
		{"instance method", EntryPoint{"App", "P", "Run"}, ErrEntryPointNotStatic},
		{"takes parameters", EntryPoint{"App", "P", "Args"}, ErrEntryPointSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want
			got, err := Discover(tree, &want)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Discover(%s) error = %v, want %v", want, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Discover(%s): %v", want, err)
			}
			if got != want {
				t.Fatalf("Discover = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDiscoverMain(t *testing.T) {
	got, err := Discover(programTree(false), nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got.Qualified() != "App::P::Main" {
		t.Fatalf("Discover = %s", got.Qualified())
	}

	_, err = Discover(programTree(true), nil)
	if !errors.Is(err, ErrMultipleEntryPoints) {
		t.Fatalf("expected ErrMultipleEntryPoints, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) || len(gerr.Notes) != 2 {
		t.Fatalf("expected a note per candidate, got %#v", err)
	}

	_, err = Discover(testkit.ScenarioTree(), nil)
	if !errors.Is(err, ErrEntryPointNotFound) {
		t.Fatalf("expected ErrEntryPointNotFound, got %v", err)
	}
}

func TestSynthesizeKeepsUnit(t *testing.T) {
	entry := EntryPoint{Class: "P", Method: "Main"}
	for _, profile := range []Profile{ProfileHosted, ProfileDevice} {
		got := Synthesize("class P\n{\n};", entry, profile, "  ")
		if !strings.HasPrefix(got, "class P\n{\n};\n\n") {
			t.Fatalf("%s: unit not preserved:\n%s", profile, got)
		}
		if !strings.Contains(got, "\n  P::Main();\n") {
			t.Fatalf("%s: call not indented:\n%s", profile, got)
		}
	}
	if got := Synthesize("", entry, ProfileHosted, ""); got != "\nint main()\n{\nP::Main();\n}\n" {
		t.Fatalf("empty unit: %q", got)
	}
}
