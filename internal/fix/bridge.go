package fix

import "classmend/internal/classfile"

// BridgeResolver maps a synthetic bridge method to the (name, descriptor)
// of the real method it stands in for, returning the method's own name and
// descriptor when it is not a recognized bridge. Pure function of its
// inputs; the override adder never inspects bridge mechanics itself.
type BridgeResolver interface {
	Resolve(c *classfile.Class, m *classfile.Method) (name, desc string)
}

// CodeBridgeResolver recognizes methods flagged ACC_BRIDGE|ACC_SYNTHETIC
// and follows their single same-class invoke to the delegate. Upstream
// renaming leaves such a bridge at the override-eligible signature while
// the method carrying the real logic sits under a different name; the
// delegate is the method a reader will recognize as the override.
type CodeBridgeResolver struct{}

func (CodeBridgeResolver) Resolve(c *classfile.Class, m *classfile.Method) (string, string) {
	const bridgeFlags = classfile.AccBridge | classfile.AccSynthetic
	if m.Access&bridgeFlags != bridgeFlags {
		return m.Name, m.Desc
	}
	if name, desc, ok := classfile.SameClassInvokeTarget(c, m); ok {
		return name, desc
	}
	return m.Name, m.Desc
}
