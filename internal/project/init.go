package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"cscpp/internal/backend/cpp"
)

// ErrAlreadyInitialized is returned by Init when cscpp.toml exists.
var ErrAlreadyInitialized = errors.New("project already initialized")

// SampleSource is the program path Init creates, relative to the root.
const SampleSource = "src/Program.cs"

// InitResult lists what Init wrote.
type InitResult struct {
	Root     string
	Manifest string
	// Sample is empty when an existing program was kept.
	Sample string
}

// Init writes cscpp.toml and a hello-world program into dir, creating it if
// needed. An existing program file is kept.
func Init(dir string, profile cpp.Profile) (*InitResult, error) {
	st, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	case err != nil:
		return nil, err
	case !st.IsDir():
		return nil, fmt.Errorf("%q is not a directory", dir)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(root, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("%w: %s exists", ErrAlreadyInitialized, manifestPath)
	}

	name := strings.TrimSpace(filepath.Base(root))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "cscpp-project"
	}
	ns := namespaceFor(name)

	data, err := DefaultManifest(name, ns, profile)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(manifestPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	res := &InitResult{Root: root, Manifest: manifestPath}

	samplePath := filepath.Join(root, filepath.FromSlash(SampleSource))
	if _, err := os.Stat(samplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(samplePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %q: %w", filepath.Dir(samplePath), err)
		}
		if err := os.WriteFile(samplePath, []byte(sampleProgram(ns)), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", SampleSource, err)
		}
		res.Sample = samplePath
	}
	return res, nil
}

// DefaultManifest encodes the manifest Init writes.
func DefaultManifest(name, namespace string, profile cpp.Profile) ([]byte, error) {
	pretty := true
	cfg := Config{
		Package: PackageConfig{Name: name},
		Translate: TranslateConfig{
			Sources: []string{SampleSource},
			Entry:   namespace + ".Program.Main",
			Profile: profile.String(),
			Pretty:  &pretty,
		},
	}
	var buf bytes.Buffer
	buf.WriteString("# cscpp project manifest\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// namespaceFor turns a directory name into a C# identifier: "blink-demo" is BlinkDemo.
func namespaceFor(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		default:
			upper = true
		}
	}
	if b.Len() == 0 {
		return "App"
	}
	return b.String()
}

func sampleProgram(ns string) string {
	return `using System;

namespace ` + ns + `
{
    class Program
    {
        static void Main()
        {
            Console.WriteLine("Hello, World!");
        }
    }
}
`
}
