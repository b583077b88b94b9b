package classfile

// Construction API. The fixers only mutate decoded classes, but the
// resolver tests and fixture jars need to build classes from scratch, and
// synthesizing models is also how the dump command golden data is produced.

// NewClass builds an empty class model with the given internal name.
// super may be "" for a class with no superclass (java/lang/Object).
func NewClass(name, super string, access uint16) (*Class, error) {
	c := &Class{
		Major:     52, // Java 8
		Pool:      &ConstPool{entries: make([]cpEntry, 1)},
		Access:    access,
		Name:      name,
		Super:     super,
		innerAttr: -1,
	}
	var err error
	if c.thisIndex, err = c.Pool.AddClass(name); err != nil {
		return nil, err
	}
	if super != "" {
		if c.superIndex, err = c.Pool.AddClass(super); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddInterface appends an implemented interface.
func (c *Class) AddInterface(name string) error {
	idx, err := c.Pool.AddClass(name)
	if err != nil {
		return err
	}
	c.ifaceIndexes = append(c.ifaceIndexes, idx)
	c.Interfaces = append(c.Interfaces, name)
	return nil
}

// AddMethod appends a method with no attributes.
func (c *Class) AddMethod(name, desc string, access uint16) (*Method, error) {
	nameIdx, err := c.Pool.AddUtf8(name)
	if err != nil {
		return nil, err
	}
	descIdx, err := c.Pool.AddUtf8(desc)
	if err != nil {
		return nil, err
	}
	m := &Method{
		Access:              access,
		Name:                name,
		Desc:                desc,
		nameIndex:           nameIdx,
		descIndex:           descIdx,
		visibleParamsAttr:   -1,
		invisibleParamsAttr: -1,
		invisibleAnnsAttr:   -1,
	}
	c.Methods = append(c.Methods, m)
	return m, nil
}

// AddInnerClass appends an InnerClasses table entry, creating the attribute
// on first use. outer and simpleName may be "" (anonymous/local classes).
func (c *Class) AddInnerClass(inner, outer, simpleName string, access uint16) error {
	if c.innerAttr < 0 {
		nameIdx, err := c.Pool.AddUtf8(attrInnerClasses)
		if err != nil {
			return err
		}
		c.Attrs = append(c.Attrs, Attribute{NameIndex: nameIdx, Name: attrInnerClasses})
		c.innerAttr = len(c.Attrs) - 1
	}
	ic := InnerClass{Inner: inner, Outer: outer, SimpleName: simpleName, Access: access}
	var err error
	if ic.innerIdx, err = c.Pool.AddClass(inner); err != nil {
		return err
	}
	if outer != "" {
		if ic.outerIdx, err = c.Pool.AddClass(outer); err != nil {
			return err
		}
	}
	if simpleName != "" {
		if ic.nameIdx, err = c.Pool.AddUtf8(simpleName); err != nil {
			return err
		}
	}
	c.Inner = append(c.Inner, ic)
	return nil
}

// InitParamAnnotations creates an empty parameter-annotation channel
// covering numParams positions and returns it. Replaces any existing
// channel of the same visibility.
func (c *Class) InitParamAnnotations(m *Method, visible bool, numParams int) (*ParamAnnotations, error) {
	attrName := attrInvisibleParamAnns
	attrPos := &m.invisibleParamsAttr
	channel := &m.InvisibleParams
	if visible {
		attrName = attrVisibleParamAnns
		attrPos = &m.visibleParamsAttr
		channel = &m.VisibleParams
	}
	if *attrPos < 0 {
		nameIdx, err := c.Pool.AddUtf8(attrName)
		if err != nil {
			return nil, err
		}
		m.Attrs = append(m.Attrs, Attribute{NameIndex: nameIdx, Name: attrName})
		*attrPos = len(m.Attrs) - 1
	}
	pa := &ParamAnnotations{Count: uint8(numParams), Sets: make([][]Annotation, numParams)}
	*channel = pa
	return pa, nil
}

// AddCode attaches a minimal Code attribute wrapping the given bytecode.
// No exception table, no nested attributes.
func (c *Class) AddCode(m *Method, code []byte) error {
	nameIdx, err := c.Pool.AddUtf8(attrCode)
	if err != nil {
		return err
	}
	data := make([]byte, 0, 12+len(code))
	data = append(data, 0, 4, 0, 4) // max_stack, max_locals
	data = append(data,
		byte(len(code)>>24), byte(len(code)>>16), byte(len(code)>>8), byte(len(code)))
	data = append(data, code...)
	data = append(data, 0, 0, 0, 0) // exception table, attribute count
	m.Attrs = append(m.Attrs, Attribute{NameIndex: nameIdx, Name: attrCode, Data: data})
	return nil
}

// AddParamAnnotation appends an annotation with the given type descriptor
// (and no element values) to one parameter position of a channel created by
// InitParamAnnotations.
func (c *Class) AddParamAnnotation(m *Method, visible bool, param int, desc string) error {
	pa := m.ParamChannel(visible)
	ann, err := newAnnotation(c.Pool, desc)
	if err != nil {
		return err
	}
	pa.Sets[param] = append(pa.Sets[param], ann)
	return nil
}
