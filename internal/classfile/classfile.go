// Package classfile decodes and re-encodes the JVM class-file format at the
// granularity the metadata fixers need: constant pool, class hierarchy,
// method headers, annotation attributes, and the inner-class table. Every
// structure the fixers do not touch round-trips byte-for-byte, so encoding
// an unmodified class reproduces its input exactly.
package classfile

import (
	"errors"
	"fmt"
)

var (
	ErrNotClassFile = errors.New("classfile: bad magic")
	ErrTruncated    = errors.New("classfile: truncated")
	ErrPoolFull     = errors.New("classfile: constant pool full")
)

const magic = 0xCAFEBABE

// ClassSuffix is the archive-entry suffix that marks a compiled class.
const ClassSuffix = ".class"

// Attribute is one attribute as stored, name resolved for dispatch. Data is
// the raw payload; attributes the package decodes keep their structured form
// on the owning Method or Class and are re-encoded from it.
type Attribute struct {
	NameIndex uint16
	Name      string
	Data      []byte
}

// Field is a field declaration. Fields are never mutated, so their
// attributes stay opaque.
type Field struct {
	Access               uint16
	NameIndex, DescIndex uint16
	Attrs                []Attribute
}

// Method is one method declaration with the annotation channels decoded.
type Method struct {
	Access uint16
	Name   string
	Desc   string
	Attrs  []Attribute

	// Parameter-annotation channels; nil when the attribute is absent.
	VisibleParams   *ParamAnnotations
	InvisibleParams *ParamAnnotations
	// Declaration-level invisible annotations; nil slice when absent.
	InvisibleAnns []Annotation

	nameIndex, descIndex uint16
	// Positions of the decoded attributes within Attrs, -1 when absent.
	// Encoding rebuilds these slots from the structured form and copies
	// every other attribute verbatim.
	visibleParamsAttr   int
	invisibleParamsAttr int
	invisibleAnnsAttr   int
}

// HasInvisibleAnnotation reports whether the method already carries an
// invisible annotation with the given type descriptor.
func (m *Method) HasInvisibleAnnotation(desc string) bool {
	for _, a := range m.InvisibleAnns {
		if a.Is(desc) {
			return true
		}
	}
	return false
}

// ParamChannel returns one of the two parameter-annotation channels.
func (m *Method) ParamChannel(visible bool) *ParamAnnotations {
	if visible {
		return m.VisibleParams
	}
	return m.InvisibleParams
}

// InnerClass is one entry of the InnerClasses table, names resolved.
// Outer and SimpleName are empty when the corresponding index is 0.
type InnerClass struct {
	Inner      string
	Outer      string
	SimpleName string
	Access     uint16

	innerIdx, outerIdx, nameIdx uint16
}

// Class is the decoded model of one compiled class.
type Class struct {
	Minor, Major uint16
	Pool         *ConstPool
	Access       uint16
	Name         string
	Super        string // "" for java/lang/Object
	Interfaces   []string
	Fields       []Field
	Methods      []*Method
	Attrs        []Attribute
	Inner        []InnerClass

	thisIndex, superIndex uint16
	ifaceIndexes          []uint16
	innerAttr             int // position of InnerClasses within Attrs, -1
}

// IsEnum reports whether the class carries the enum flag.
func (c *Class) IsEnum() bool { return c.Access&AccEnum != 0 }

// OwnInnerEntry returns the InnerClasses entry describing the class itself,
// or nil when the table has none.
func (c *Class) OwnInnerEntry() *InnerClass {
	for i := range c.Inner {
		if c.Inner[i].Inner == c.Name {
			return &c.Inner[i]
		}
	}
	return nil
}

// Method returns the declared method with the given name and descriptor,
// or nil.
func (c *Class) Method(name, desc string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}
	return nil
}

// AddInvisibleAnnotation appends an invisible annotation with the given
// type descriptor and no element values to the method, creating the
// RuntimeInvisibleAnnotations attribute if the method has none. Callers
// that must not duplicate check HasInvisibleAnnotation first.
func (c *Class) AddInvisibleAnnotation(m *Method, desc string) error {
	ann, err := newAnnotation(c.Pool, desc)
	if err != nil {
		return err
	}
	if m.invisibleAnnsAttr < 0 {
		nameIdx, err := c.Pool.AddUtf8(attrInvisibleAnns)
		if err != nil {
			return err
		}
		m.Attrs = append(m.Attrs, Attribute{NameIndex: nameIdx, Name: attrInvisibleAnns})
		m.invisibleAnnsAttr = len(m.Attrs) - 1
	}
	m.InvisibleAnns = append(m.InvisibleAnns, ann)
	return nil
}

// Parse decodes a complete class file.
func Parse(b []byte) (*Class, error) {
	r := &reader{b: b}
	if r.u4() != magic {
		if r.err != nil {
			return nil, ErrTruncated
		}
		return nil, ErrNotClassFile
	}
	c := &Class{innerAttr: -1}
	c.Minor = r.u2()
	c.Major = r.u2()

	pool, err := parsePool(r)
	if err != nil {
		return nil, err
	}
	c.Pool = pool

	c.Access = r.u2()
	c.thisIndex = r.u2()
	c.superIndex = r.u2()
	if r.err != nil {
		return nil, r.err
	}
	if c.Name, err = pool.ClassName(c.thisIndex); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	if c.superIndex != 0 {
		if c.Super, err = pool.ClassName(c.superIndex); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	nIfaces := int(r.u2())
	c.ifaceIndexes = make([]uint16, 0, nIfaces)
	c.Interfaces = make([]string, 0, nIfaces)
	for i := 0; i < nIfaces; i++ {
		idx := r.u2()
		c.ifaceIndexes = append(c.ifaceIndexes, idx)
		if r.err != nil {
			return nil, r.err
		}
		name, err := pool.ClassName(idx)
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		c.Interfaces = append(c.Interfaces, name)
	}

	nFields := int(r.u2())
	for i := 0; i < nFields; i++ {
		f := Field{Access: r.u2(), NameIndex: r.u2(), DescIndex: r.u2()}
		if f.Attrs, err = parseAttrs(r, pool); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		c.Fields = append(c.Fields, f)
	}

	nMethods := int(r.u2())
	for i := 0; i < nMethods; i++ {
		m, err := parseMethod(r, pool)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		c.Methods = append(c.Methods, m)
	}

	if c.Attrs, err = parseAttrs(r, pool); err != nil {
		return nil, err
	}
	for i := range c.Attrs {
		if c.Attrs[i].Name == attrInnerClasses {
			c.innerAttr = i
			if c.Inner, err = parseInnerClasses(c.Attrs[i].Data, pool); err != nil {
				return nil, fmt.Errorf("%s: %w", attrInnerClasses, err)
			}
			break
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.rest() != 0 {
		return nil, fmt.Errorf("classfile: %d trailing bytes", r.rest())
	}
	return c, nil
}

func parseAttrs(r *reader, p *ConstPool) ([]Attribute, error) {
	n := int(r.u2())
	attrs := make([]Attribute, 0, n)
	for i := 0; i < n; i++ {
		nameIdx := r.u2()
		length := int(r.u4())
		data := r.bytes(length)
		if r.err != nil {
			return nil, r.err
		}
		name, err := p.Utf8(nameIdx)
		if err != nil {
			return nil, fmt.Errorf("attribute %d name: %w", i, err)
		}
		attrs = append(attrs, Attribute{NameIndex: nameIdx, Name: name, Data: data})
	}
	return attrs, nil
}

func parseMethod(r *reader, p *ConstPool) (*Method, error) {
	m := &Method{
		Access:              r.u2(),
		nameIndex:           r.u2(),
		descIndex:           r.u2(),
		visibleParamsAttr:   -1,
		invisibleParamsAttr: -1,
		invisibleAnnsAttr:   -1,
	}
	if r.err != nil {
		return nil, r.err
	}
	var err error
	if m.Name, err = p.Utf8(m.nameIndex); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if m.Desc, err = p.Utf8(m.descIndex); err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	if m.Attrs, err = parseAttrs(r, p); err != nil {
		return nil, err
	}
	for i := range m.Attrs {
		a := &m.Attrs[i]
		switch a.Name {
		case attrVisibleParamAnns:
			if m.VisibleParams, err = parseParamAnnotations(a.Data, p); err != nil {
				return nil, fmt.Errorf("%s %s: %w", m.Name, a.Name, err)
			}
			m.visibleParamsAttr = i
		case attrInvisibleParamAnns:
			if m.InvisibleParams, err = parseParamAnnotations(a.Data, p); err != nil {
				return nil, fmt.Errorf("%s %s: %w", m.Name, a.Name, err)
			}
			m.invisibleParamsAttr = i
		case attrInvisibleAnns:
			if m.InvisibleAnns, err = parseAnnotationList(a.Data, p); err != nil {
				return nil, fmt.Errorf("%s %s: %w", m.Name, a.Name, err)
			}
			m.invisibleAnnsAttr = i
		}
	}
	return m, nil
}

func parseInnerClasses(data []byte, p *ConstPool) ([]InnerClass, error) {
	r := &reader{b: data}
	n := int(r.u2())
	entries := make([]InnerClass, 0, n)
	for i := 0; i < n; i++ {
		ic := InnerClass{
			innerIdx: r.u2(),
			outerIdx: r.u2(),
			nameIdx:  r.u2(),
			Access:   r.u2(),
		}
		if r.err != nil {
			return nil, r.err
		}
		var err error
		if ic.Inner, err = p.ClassName(ic.innerIdx); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if ic.outerIdx != 0 {
			if ic.Outer, err = p.ClassName(ic.outerIdx); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}
		if ic.nameIdx != 0 {
			if ic.SimpleName, err = p.Utf8(ic.nameIdx); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}
		entries = append(entries, ic)
	}
	if r.err != nil {
		return nil, r.err
	}
	return entries, nil
}
