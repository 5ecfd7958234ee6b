package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/driver"
)

// translateOptions are the flags translate and build share.
type translateOptions struct {
	profile        string
	framework      string
	entry          string
	noEntry        bool
	archive        bool
	pretty         bool
	crlf           bool
	usingNamespace bool
	fallback       string
	jobs           int
	cache          bool
}

func addTranslateFlags(cmd *cobra.Command, o *translateOptions) {
	fs := cmd.Flags()
	fs.StringVar(&o.profile, "profile", "hosted", "entry profile (hosted|device)")
	fs.StringVar(&o.framework, "framework", "", "target framework; names containing arduino imply --profile device")
	fs.StringVar(&o.entry, "entry", "", "entry method as Namespace.Class.Method (default: search for Main)")
	fs.BoolVar(&o.noEntry, "no-entry", false, "do not synthesize an entry function")
	fs.BoolVar(&o.archive, "archive", false, "serialize the syntax tree (msgpack) instead of generating C++")
	fs.BoolVar(&o.pretty, "pretty", true, "indent with tabs; --pretty=false emits unindented code")
	fs.BoolVar(&o.crlf, "crlf", false, "use CRLF line endings")
	fs.BoolVar(&o.usingNamespace, "using-namespace", false, "add using namespace after each include")
	fs.StringVar(&o.fallback, "fallback", "fail", "unsupported constructs (fail|comment)")
	fs.IntVar(&o.jobs, "jobs", 0, "max parallel workers (0=auto)")
	fs.BoolVar(&o.cache, "cache", false, "reuse outputs from the on-disk cache")
}

func (o *translateOptions) resolveProfile() (cpp.Profile, error) {
	if strings.Contains(strings.ToLower(o.framework), "arduino") {
		return cpp.ProfileDevice, nil
	}
	return cpp.ParseProfile(o.profile)
}

// driverFlags maps the options onto driver.Flags. Global flags supply the
// diagnostics limit and the timing report.
func (o *translateOptions) driverFlags(cmd *cobra.Command) (driver.Flags, error) {
	var flags driver.Flags
	profile, err := o.resolveProfile()
	if err != nil {
		return flags, err
	}
	flags.GenerateOutput = !o.archive
	flags.DeviceProfile = profile == cpp.ProfileDevice
	flags.SkipEntry = o.noEntry
	if e := strings.TrimSpace(o.entry); e != "" {
		if o.noEntry {
			return flags, fmt.Errorf("--entry and --no-entry are mutually exclusive")
		}
		ep, err := cpp.ParseEntryPoint(e)
		if err != nil {
			return flags, err
		}
		flags.Entry = &ep
	}
	flags.Options = cpp.Options{
		Compact:        !o.pretty,
		CRLF:           o.crlf,
		UsingNamespace: o.usingNamespace,
	}
	switch strings.ToLower(strings.TrimSpace(o.fallback)) {
	case "", "fail":
	case "comment":
		flags.Options.Fallback = cpp.CommentFallback
	default:
		return flags, fmt.Errorf("invalid --fallback value %q (expected fail|comment)", o.fallback)
	}

	root := cmd.Root().PersistentFlags()
	if flags.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return flags, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if flags.Timings, err = root.GetBool("timings"); err != nil {
		return flags, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return flags, nil
}

func (o *translateOptions) openCache() (*driver.Cache, error) {
	if !o.cache {
		return nil, nil
	}
	cache, err := driver.OpenCache("cscpp")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return cache, nil
}
