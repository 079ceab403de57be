// Package profile loads named shrink presets from a shrink.toml file, so
// recurring expand/prune selections don't have to be retyped as flags.
package profile

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	akerr "akaidoo/internal/errors"
	"akaidoo/internal/shrink"
)

// DefaultFileName is looked up in the working directory when no explicit
// profile file is given.
const DefaultFileName = "shrink.toml"

// Profile is one named shrink preset.
type Profile struct {
	Level         string   `toml:"level"`
	Expand        []string `toml:"expand"`
	Prune         []string `toml:"prune"`
	Relevant      []string `toml:"relevant"`
	SkipImports   bool     `toml:"skip_imports"`
	StripMetadata bool     `toml:"strip_metadata"`
}

// File is a parsed profile file.
type File struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Load reads a profile file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, akerr.New(akerr.ProfileInvalid, "profile file not readable", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, akerr.New(akerr.ProfileInvalid, "profile file does not parse", err)
	}
	return &f, nil
}

// Get returns the named profile.
func (f *File) Get(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, akerr.Newf(akerr.ProfileInvalid, "profile %q not defined", name)
	}
	return p, nil
}

// Request converts a profile into a shrink request.
func (p Profile) Request() (shrink.Request, error) {
	req := shrink.Request{
		ExpandModels:   shrink.Set(p.Expand...),
		RelevantModels: shrink.Set(p.Relevant...),
		PruneMethods:   shrink.Set(p.Prune...),
		SkipImports:    p.SkipImports,
		StripMetadata:  p.StripMetadata,
	}
	if p.Level != "" {
		level, err := shrink.ParseLevel(p.Level)
		if err != nil {
			return req, akerr.New(akerr.ProfileInvalid, "bad level in profile", err)
		}
		req.Level = level
	}
	return req, nil
}
