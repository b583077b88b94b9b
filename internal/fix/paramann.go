// Package fix repairs compiler-generated metadata disturbed by upstream
// processing: constructor parameter-annotation realignment and override
// marker re-attachment, applied per class by the archive pipeline.
package fix

import (
	"fmt"

	"classmend/internal/classfile"
)

// enumCtorPrefix is what javac prepends to every enum constructor: the
// constant name and its ordinal.
var enumCtorPrefix = []string{"Ljava/lang/String;", "I"}

// syntheticCtorPrefix returns the synthetic leading parameter types expected
// on the class's constructors, or nil when the compiler adds none. Enum
// status wins over the inner-class table: a nested enum still gets the
// name/ordinal pair, not an outer reference.
func syntheticCtorPrefix(c *classfile.Class) []string {
	if c.IsEnum() {
		return enumCtorPrefix
	}
	ic := c.OwnInnerEntry()
	if ic != nil && ic.Outer != "" && ic.Access&(classfile.AccStatic|classfile.AccInterface) == 0 {
		return []string{"L" + ic.Outer + ";"}
	}
	return nil
}

// FixParamAnnotations realigns constructor parameter-annotation arrays by
// dropping the slots that covered compiler-synthetic leading parameters.
// Each channel is trimmed only when its array spans the full synthetic+real
// parameter count; an array of any other length is assumed already aligned
// (or legitimately shorter) and left alone. That size check is a heuristic,
// not a proof: an array that coincidentally has the full count while
// already holding only real-parameter annotations would be trimmed wrongly.
// Returns the descriptors of the constructors that were changed.
func FixParamAnnotations(c *classfile.Class) ([]string, error) {
	prefix := syntheticCtorPrefix(c)
	if prefix == nil {
		return nil, nil
	}
	var fixed []string
	for _, m := range c.Methods {
		if m.Name != classfile.NameInit {
			continue
		}
		params, err := classfile.ParamTypes(m.Desc)
		if err != nil {
			return nil, fmt.Errorf("fix %s.%s: %w", c.Name, m.Name, err)
		}
		if !hasTypePrefix(params, prefix) {
			continue
		}
		changed := false
		for _, visible := range []bool{true, false} {
			pa := m.ParamChannel(visible)
			if pa == nil || len(pa.Sets) != len(params) {
				continue
			}
			pa.TrimLeading(len(prefix))
			changed = true
		}
		if changed {
			fixed = append(fixed, m.Desc)
		}
	}
	return fixed, nil
}

func hasTypePrefix(params, prefix []string) bool {
	if len(params) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if params[i] != p {
			return false
		}
	}
	return true
}
