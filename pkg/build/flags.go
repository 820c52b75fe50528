// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded into the binary at compile
// time via linker flags, for example:
//
//	go build -ldflags "-X spectrum/pkg/build.version=0.2.0"
package build

// Populated by -ldflags. Development builds fall back to the defaults.
var (
	name    = "spectrum"
	version = "dev"
	commit  = "unknown"
	time    = "unknown"
)

// Info is the build metadata baked into the binary.
type Info struct {
	Name    string
	Version string
	Commit  string
	Time    string
}

// Get returns the build metadata. Fields never come back empty; unset
// linker flags keep their development defaults.
func Get() Info {
	return Info{
		Name:    name,
		Version: version,
		Commit:  commit,
		Time:    time,
	}
}
