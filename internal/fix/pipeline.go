package fix

import (
	"errors"
	"fmt"

	"classmend/internal/classfile"
	"classmend/internal/jarx"
	"classmend/internal/resolve"
)

// ErrUnresolvedEntry means a class entry present in the primary archive
// failed to resolve from the cache. Entries are resolved from the very
// archive being walked, so this is an internal consistency failure, never
// a skip.
var ErrUnresolvedEntry = errors.New("fix: archive class entry failed to resolve")

// FixKind labels one kind of applied fix in a report.
type FixKind string

const (
	KindParamAnnotations FixKind = "param_annotations"
	KindOverrideMarker   FixKind = "override_marker"
)

// FixRecord is one applied fix.
type FixRecord struct {
	Class  string  `json:"class"`
	Method string  `json:"method"`
	Kind   FixKind `json:"kind"`
}

// Report summarizes one pipeline run.
type Report struct {
	Classes             int         `json:"classes"`
	Resources           int         `json:"resources"`
	Directories         int         `json:"directories"`
	Excluded            int         `json:"excluded"`
	TrimmedConstructors int         `json:"trimmed_constructors"`
	MarkersAdded        int         `json:"markers_added"`
	Fixes               []FixRecord `json:"fixes,omitempty"`
}

// Pipeline walks a primary archive and applies both fixers to every class
// entry, resolving ancestors against the primary archive first and the
// fallback reference archive second. Single-threaded; one resolution cache
// per run.
type Pipeline struct {
	Primary  *jarx.Jar
	Fallback *jarx.Jar // may be nil
	Config   *Config   // nil means DefaultConfig
	Bridges  BridgeResolver
}

// Run processes every primary entry in stored order. out may be nil for a
// report-only pass. Any failure aborts the run; there is no
// partial-success mode.
func (p *Pipeline) Run(out *jarx.Writer) (*Report, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	bridges := p.Bridges
	if bridges == nil {
		bridges = CodeBridgeResolver{}
	}
	var fallback resolve.Source
	if p.Fallback != nil {
		fallback = p.Fallback
	}
	resolver := resolve.New(p.Primary, fallback)
	adder := &OverrideAdder{Resolver: resolver, Bridges: bridges, Marker: cfg.Marker}

	rep := &Report{}
	for _, f := range p.Primary.Entries() {
		name := f.Name
		switch {
		case jarx.IsDir(name):
			rep.Directories++
			if out != nil {
				if err := out.WriteDir(name); err != nil {
					return nil, err
				}
			}
		case !jarx.IsClass(name) || cfg.Excluded(name):
			if cfg.Excluded(name) {
				rep.Excluded++
			} else {
				rep.Resources++
			}
			if out != nil {
				data, err := p.Primary.ReadEntry(name)
				if err != nil {
					return nil, err
				}
				if err := out.WriteFile(name, data); err != nil {
					return nil, err
				}
			}
		default:
			if err := p.fixClass(resolver, adder, rep, name, out); err != nil {
				return nil, err
			}
		}
	}
	return rep, nil
}

func (p *Pipeline) fixClass(resolver *resolve.Resolver, adder *OverrideAdder, rep *Report, entry string, out *jarx.Writer) error {
	className := jarx.ClassName(entry)
	c, err := resolver.Resolve(className)
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry, err)
	}
	if c == nil {
		return fmt.Errorf("entry %s: class %s: %w", entry, className, ErrUnresolvedEntry)
	}

	// Fixer order has no correctness dependency; fixed for determinism.
	trimmed, err := FixParamAnnotations(c)
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry, err)
	}
	added, err := adder.Apply(c)
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry, err)
	}

	rep.Classes++
	rep.TrimmedConstructors += len(trimmed)
	rep.MarkersAdded += len(added)
	for _, desc := range trimmed {
		rep.Fixes = append(rep.Fixes, FixRecord{Class: className, Method: classfile.NameInit + desc, Kind: KindParamAnnotations})
	}
	for _, sig := range added {
		rep.Fixes = append(rep.Fixes, FixRecord{Class: className, Method: sig, Kind: KindOverrideMarker})
	}

	if out != nil {
		if err := out.WriteFile(entry, classfile.Encode(c)); err != nil {
			return err
		}
	}
	return nil
}

// Transform opens the primary, fallback, and output archives, runs the
// pipeline, and releases all of them on every exit path. refPath may be ""
// (no fallback source); outPath may be "" (report-only pass).
func Transform(inPath, refPath, outPath string, cfg *Config) (*Report, error) {
	primary, err := jarx.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer primary.Close()

	var fallback *jarx.Jar
	if refPath != "" {
		if fallback, err = jarx.Open(refPath); err != nil {
			return nil, err
		}
		defer fallback.Close()
	}

	var out *jarx.Writer
	if outPath != "" {
		if out, err = jarx.NewWriter(outPath); err != nil {
			return nil, err
		}
	}

	p := &Pipeline{Primary: primary, Fallback: fallback, Config: cfg}
	rep, err := p.Run(out)
	if out != nil {
		// Close even after a failed run; the archive is unusable either way.
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}
