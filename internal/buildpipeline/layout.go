package buildpipeline

import (
	"path/filepath"
	"strings"

	"cscpp/internal/backend/cpp"
)

// Layout names where outputs go under a root directory:
//
//	hosted:  <root>/src/program.cpp
//	device:  <root>/arduino/program/program.ino
//	archive: <root>/out/out.cu
//
// With several sources each unit is named after its source file instead of
// "program" ("out" for archives), lower-cased.
type Layout struct {
	Root    string
	Profile cpp.Profile
	Archive bool
}

// Path returns the output path for source; single selects the fixed names.
func (l Layout) Path(source string, single bool) string {
	stem := "program"
	if l.Archive {
		stem = "out"
	}
	if !single {
		base := filepath.Base(source)
		stem = strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	switch {
	case l.Archive:
		return filepath.Join(l.Root, "out", stem+".cu")
	case l.Profile == cpp.ProfileDevice:
		// the Arduino IDE wants a sketch in a folder of the same name
		return filepath.Join(l.Root, "arduino", stem, stem+".ino")
	default:
		return filepath.Join(l.Root, "src", stem+".cpp")
	}
}
