package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/diag"
)

// ErrNoManifest is returned by Load when no cscpp.toml is found.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

// Manifest is a loaded cscpp.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package   PackageConfig   `toml:"package"`
	Translate TranslateConfig `toml:"translate"`
	Output    OutputConfig    `toml:"output,omitempty"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type TranslateConfig struct {
	Sources   []string `toml:"sources"`
	Entry     string   `toml:"entry,omitempty"`
	Profile   string   `toml:"profile,omitempty"`
	Framework string   `toml:"framework,omitempty"`
	// Pretty defaults to true when absent.
	Pretty   *bool  `toml:"pretty,omitempty"`
	CRLF     bool   `toml:"crlf,omitempty"`
	Fallback string `toml:"fallback,omitempty"`
}

type OutputConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// Error is a manifest problem with its PRJ diagnostic code.
type Error struct {
	Path string
	Code diag.Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func manifestError(path string, code diag.Code, err error, format string, args ...any) *Error {
	return &Error{Path: path, Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Load finds the manifest above startDir and loads it.
func Load(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, manifestError(startDir, diag.ProjManifestMissing, ErrNoManifest, "not a cscpp project")
	}
	return LoadManifest(path)
}

// LoadManifest decodes and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, manifestError(abs, diag.ProjManifestInvalid, err, "failed to parse TOML")
	}
	if err := validate(abs, &cfg, meta); err != nil {
		return nil, err
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

func validate(path string, cfg *Config, meta toml.MetaData) error {
	if !meta.IsDefined("package") {
		return manifestError(path, diag.ProjManifestInvalid, nil, "missing [package]")
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return manifestError(path, diag.ProjManifestInvalid, nil, "missing [package].name")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return manifestError(path, diag.ProjManifestInvalid, nil, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(cfg.Translate.Sources) == 0 {
		return manifestError(path, diag.ProjNoSources, nil, "[translate].sources is empty")
	}
	for _, src := range cfg.Translate.Sources {
		if strings.TrimSpace(src) == "" {
			return manifestError(path, diag.ProjNoSources, nil, "[translate].sources has an empty entry")
		}
	}
	if _, err := cpp.ParseProfile(cfg.Translate.Profile); err != nil {
		return manifestError(path, diag.ProjInvalidProfile, err, "invalid [translate].profile")
	}
	if e := strings.TrimSpace(cfg.Translate.Entry); e != "" {
		if _, err := cpp.ParseEntryPoint(e); err != nil {
			return manifestError(path, diag.ProjInvalidEntry, err, "invalid [translate].entry")
		}
	}
	switch cfg.Translate.Fallback {
	case "", "fail", "comment":
	default:
		return manifestError(path, diag.ProjManifestInvalid, nil, "[translate].fallback must be fail or comment, got %q", cfg.Translate.Fallback)
	}
	return nil
}

// Profile resolves [translate].profile and framework; a framework naming
// arduino selects the device profile.
func (m *Manifest) Profile() cpp.Profile {
	if strings.Contains(strings.ToLower(m.Config.Translate.Framework), "arduino") {
		return cpp.ProfileDevice
	}
	p, err := cpp.ParseProfile(m.Config.Translate.Profile)
	if err != nil {
		// validated on load
		return cpp.ProfileHosted
	}
	return p
}

// Entry is the configured entry point, nil to search for Main.
func (m *Manifest) Entry() *cpp.EntryPoint {
	e := strings.TrimSpace(m.Config.Translate.Entry)
	if e == "" {
		return nil
	}
	ep, err := cpp.ParseEntryPoint(e)
	if err != nil {
		return nil
	}
	return &ep
}

func (m *Manifest) Pretty() bool {
	return m.Config.Translate.Pretty == nil || *m.Config.Translate.Pretty
}

// CommentFallback reports whether unsupported constructs become comments.
func (m *Manifest) CommentFallback() bool {
	return m.Config.Translate.Fallback == "comment"
}

// SourcePaths resolves [translate].sources against the project root.
func (m *Manifest) SourcePaths() []string {
	out := make([]string, 0, len(m.Config.Translate.Sources))
	for _, src := range m.Config.Translate.Sources {
		out = append(out, m.resolve(strings.TrimSpace(src)))
	}
	return out
}

// OutputDir is the layout root; it defaults to the project root.
func (m *Manifest) OutputDir() string {
	return m.resolve(strings.TrimSpace(m.Config.Output.Dir))
}

func (m *Manifest) resolve(rel string) string {
	if rel == "" {
		return m.Root
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}
