package fix

import (
	"classmend/internal/classfile"
	"classmend/internal/resolve"
)

// DefaultMarker is the invisible annotation recording that a method
// overrides or implements an ancestor method. Invisible because @Override
// has source retention; decompilers read this channel and print the
// annotation back.
const DefaultMarker = "Ljava/lang/Override;"

type signature struct {
	name, desc string
}

// OverrideAdder re-attaches override markers to methods whose signature
// matches a method of some resolvable ancestor.
type OverrideAdder struct {
	Resolver *resolve.Resolver
	Bridges  BridgeResolver
	Marker   string // annotation type descriptor
}

// Apply ensures every override-eligible method of c carries the marker.
// A bridge at an eligible signature redirects the marker to its delegate
// when that method is declared on c. Returns name+descriptor of each
// method that gained a marker. No other method field is modified.
func (oa *OverrideAdder) Apply(c *classfile.Class) ([]string, error) {
	sigs := make(map[signature]struct{})
	seen := map[string]bool{c.Name: true}
	if err := oa.collect(c.Super, sigs, seen); err != nil {
		return nil, err
	}
	for _, iface := range c.Interfaces {
		if err := oa.collect(iface, sigs, seen); err != nil {
			return nil, err
		}
	}

	var added []string
	for _, m := range c.Methods {
		if !overrideEligible(m) {
			continue
		}
		if _, ok := sigs[signature{m.Name, m.Desc}]; !ok {
			continue
		}
		target := m
		if name, desc := oa.Bridges.Resolve(c, m); name != m.Name || desc != m.Desc {
			if t := c.Method(name, desc); t != nil {
				target = t
			}
		}
		if target.HasInvisibleAnnotation(oa.Marker) {
			continue
		}
		if err := c.AddInvisibleAnnotation(target, oa.Marker); err != nil {
			return nil, err
		}
		added = append(added, target.Name+target.Desc)
	}
	return added, nil
}

// collect accumulates (name, descriptor) pairs from the class and all its
// resolvable ancestors. Unresolvable names are outside the processed
// boundary (platform or external-library classes); traversal just stops on
// that branch.
func (oa *OverrideAdder) collect(name string, sigs map[signature]struct{}, seen map[string]bool) error {
	if name == "" || seen[name] {
		return nil
	}
	seen[name] = true
	a, err := oa.Resolver.Resolve(name)
	if err != nil {
		return err
	}
	if a == nil {
		return nil
	}
	for _, m := range a.Methods {
		if overrideEligible(m) {
			sigs[signature{m.Name, m.Desc}] = struct{}{}
		}
	}
	if err := oa.collect(a.Super, sigs, seen); err != nil {
		return err
	}
	for _, iface := range a.Interfaces {
		if err := oa.collect(iface, sigs, seen); err != nil {
			return err
		}
	}
	return nil
}

// overrideEligible excludes what can never take part in overriding:
// static methods, private methods, and initializers.
func overrideEligible(m *classfile.Method) bool {
	if m.Access&(classfile.AccStatic|classfile.AccPrivate) != 0 {
		return false
	}
	return m.Name != classfile.NameInit && m.Name != classfile.NameClinit
}
