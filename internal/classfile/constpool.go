package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Constant pool tags (JVMS §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// cpEntry is one constant-pool slot: tag plus encoded payload. Long and
// double constants occupy two slots; the second carries tag 0 and is never
// written.
type cpEntry struct {
	tag  uint8
	data []byte
}

// ConstPool preserves every entry of the original pool byte-for-byte and
// supports appending Utf8 and Class entries for the few constants the
// fixers may need to introduce.
type ConstPool struct {
	entries []cpEntry // index 0 unused, as in the file format
}

func parsePool(r *reader) (*ConstPool, error) {
	count := int(r.u2())
	if count == 0 {
		return nil, fmt.Errorf("constant pool: %w", ErrTruncated)
	}
	p := &ConstPool{entries: make([]cpEntry, count)}
	for i := 1; i < count; i++ {
		tag := r.u1()
		var size int
		switch tag {
		case tagUtf8:
			start := r.off
			n := int(r.u2())
			r.bytes(n)
			p.entries[i] = cpEntry{tag: tag, data: r.b[start:min(r.off, len(r.b))]}
			continue
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			size = 4
		case tagLong, tagDouble:
			size = 8
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			size = 2
		case tagMethodHandle:
			size = 3
		default:
			if r.err != nil {
				return nil, r.err
			}
			return nil, fmt.Errorf("constant pool entry %d: unknown tag %d", i, tag)
		}
		p.entries[i] = cpEntry{tag: tag, data: r.bytes(size)}
		if tag == tagLong || tag == tagDouble {
			i++ // second slot stays tag 0
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("constant pool: %w", r.err)
	}
	return p, nil
}

func (p *ConstPool) encode() []byte {
	size := 2
	for _, e := range p.entries[1:] {
		if e.tag != 0 {
			size += 1 + len(e.data)
		}
	}
	out := make([]byte, 0, size)
	out = binary.BigEndian.AppendUint16(out, uint16(len(p.entries)))
	for _, e := range p.entries[1:] {
		if e.tag == 0 {
			continue
		}
		out = append(out, e.tag)
		out = append(out, e.data...)
	}
	return out
}

func (p *ConstPool) entry(idx uint16, want uint8) ([]byte, error) {
	i := int(idx)
	if i == 0 || i >= len(p.entries) {
		return nil, fmt.Errorf("constant pool index %d out of range", idx)
	}
	e := p.entries[i]
	if e.tag != want {
		return nil, fmt.Errorf("constant pool index %d: tag %d, want %d", idx, e.tag, want)
	}
	return e.data, nil
}

// Utf8 returns the string stored at a CONSTANT_Utf8 slot.
func (p *ConstPool) Utf8(idx uint16) (string, error) {
	data, err := p.entry(idx, tagUtf8)
	if err != nil {
		return "", err
	}
	return string(data[2:]), nil
}

// ClassName resolves a CONSTANT_Class slot to its internal name.
func (p *ConstPool) ClassName(idx uint16) (string, error) {
	data, err := p.entry(idx, tagClass)
	if err != nil {
		return "", err
	}
	return p.Utf8(binary.BigEndian.Uint16(data))
}

// MethodTarget resolves a CONSTANT_Methodref or CONSTANT_InterfaceMethodref
// slot to (owner internal name, method name, descriptor).
func (p *ConstPool) MethodTarget(idx uint16) (owner, name, desc string, err error) {
	i := int(idx)
	if i == 0 || i >= len(p.entries) {
		return "", "", "", fmt.Errorf("constant pool index %d out of range", idx)
	}
	e := p.entries[i]
	if e.tag != tagMethodref && e.tag != tagInterfaceMethodref {
		return "", "", "", fmt.Errorf("constant pool index %d: tag %d is not a method ref", idx, e.tag)
	}
	owner, err = p.ClassName(binary.BigEndian.Uint16(e.data))
	if err != nil {
		return "", "", "", err
	}
	nt, err := p.entry(binary.BigEndian.Uint16(e.data[2:]), tagNameAndType)
	if err != nil {
		return "", "", "", err
	}
	name, err = p.Utf8(binary.BigEndian.Uint16(nt))
	if err != nil {
		return "", "", "", err
	}
	desc, err = p.Utf8(binary.BigEndian.Uint16(nt[2:]))
	if err != nil {
		return "", "", "", err
	}
	return owner, name, desc, nil
}

func (p *ConstPool) add(tag uint8, data []byte) (uint16, error) {
	if len(p.entries) >= 0xFFFF {
		return 0, ErrPoolFull
	}
	p.entries = append(p.entries, cpEntry{tag: tag, data: data})
	return uint16(len(p.entries) - 1), nil
}

// AddUtf8 returns the index of an existing CONSTANT_Utf8 entry for s, or
// appends one. Appending keeps the original pool prefix untouched so
// unmutated constants keep their indices.
func (p *ConstPool) AddUtf8(s string) (uint16, error) {
	if len(s) > 0xFFFF {
		return 0, fmt.Errorf("utf8 constant too long (%d bytes)", len(s))
	}
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].tag == tagUtf8 && string(p.entries[i].data[2:]) == s {
			return uint16(i), nil
		}
	}
	data := make([]byte, 0, 2+len(s))
	data = binary.BigEndian.AppendUint16(data, uint16(len(s)))
	data = append(data, s...)
	return p.add(tagUtf8, data)
}

// AddNameAndType interns a CONSTANT_NameAndType entry.
func (p *ConstPool) AddNameAndType(name, desc string) (uint16, error) {
	nameIdx, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	descIdx, err := p.AddUtf8(desc)
	if err != nil {
		return 0, err
	}
	data := binary.BigEndian.AppendUint16(nil, nameIdx)
	data = binary.BigEndian.AppendUint16(data, descIdx)
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].tag == tagNameAndType && bytes.Equal(p.entries[i].data, data) {
			return uint16(i), nil
		}
	}
	return p.add(tagNameAndType, data)
}

// AddMethodref interns a CONSTANT_Methodref for owner.name:desc.
func (p *ConstPool) AddMethodref(owner, name, desc string) (uint16, error) {
	classIdx, err := p.AddClass(owner)
	if err != nil {
		return 0, err
	}
	ntIdx, err := p.AddNameAndType(name, desc)
	if err != nil {
		return 0, err
	}
	data := binary.BigEndian.AppendUint16(nil, classIdx)
	data = binary.BigEndian.AppendUint16(data, ntIdx)
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].tag == tagMethodref && bytes.Equal(p.entries[i].data, data) {
			return uint16(i), nil
		}
	}
	return p.add(tagMethodref, data)
}

// AddClass returns the index of an existing CONSTANT_Class entry for the
// internal name, or appends one (plus its Utf8 if needed).
func (p *ConstPool) AddClass(name string) (uint16, error) {
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].tag == tagClass {
			if n, err := p.ClassName(uint16(i)); err == nil && n == name {
				return uint16(i), nil
			}
		}
	}
	utf, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	return p.add(tagClass, binary.BigEndian.AppendUint16(nil, utf))
}
