package checker

// Check names a kind of check the engine knows about.
type Check string

const (
	KindFields        Check = "fields"
	KindAbbreviations Check = "abbreviations"
	KindKeys          Check = "keys"
	KindKeyFormat     Check = "key_format"
	KindNames         Check = "names"
	KindEditors       Check = "editors"
)

// Options is the raw check configuration as given by the caller.
type Options struct {
	Mute       bool // Suppress the "seems correct" line for passing entries
	ErrorsOnly bool // Suppress all output for passing entries

	CheckAll           bool // Enables every check, overriding the toggles below
	CheckFields        bool
	CheckAbbreviations bool
	CheckKeys          bool
	CheckKeyFormat     bool // Not implemented
	CheckNames         bool // Not implemented
	CheckEditors       bool // Not implemented

	Workers int // Per-record checks run concurrently when > 1
}

// Effective is the resolved configuration an Engine runs with.
type Effective struct {
	Mute       bool `json:"mute"`
	ErrorsOnly bool `json:"errors_only"`

	Fields        bool `json:"fields"`
	Abbreviations bool `json:"abbreviations"`
	Keys          bool `json:"keys"`
	KeyFormat     bool `json:"key_format"`
	Names         bool `json:"names"`
	Editors       bool `json:"editors"`

	Workers int `json:"workers"`
}

// Resolve applies CheckAll and worker defaults.
func (o Options) Resolve() Effective {
	eff := Effective{
		Mute:          o.Mute,
		ErrorsOnly:    o.ErrorsOnly,
		Fields:        o.CheckFields,
		Abbreviations: o.CheckAbbreviations,
		Keys:          o.CheckKeys,
		KeyFormat:     o.CheckKeyFormat,
		Names:         o.CheckNames,
		Editors:       o.CheckEditors,
		Workers:       o.Workers,
	}
	if o.CheckAll {
		eff.Fields = true
		eff.Abbreviations = true
		eff.Keys = true
		eff.KeyFormat = true
		eff.Names = true
		eff.Editors = true
	}
	if eff.Workers < 1 {
		eff.Workers = 1
	}
	return eff
}

// AnyCheck reports whether at least one check is requested.
func (o Options) AnyCheck() bool {
	return o.CheckAll || o.CheckFields || o.CheckAbbreviations || o.CheckKeys ||
		o.CheckKeyFormat || o.CheckNames || o.CheckEditors
}

// unimplemented returns the requested checks that have no behavior yet.
func (e Effective) unimplemented() []Check {
	var checks []Check
	if e.KeyFormat {
		checks = append(checks, KindKeyFormat)
	}
	if e.Names {
		checks = append(checks, KindNames)
	}
	if e.Editors {
		checks = append(checks, KindEditors)
	}
	return checks
}
