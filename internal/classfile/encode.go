package classfile

import (
	"bytes"
	"encoding/binary"
)

// Encode serializes the class back to class-file bytes. Structures decoded
// by Parse are rebuilt from their current form; everything else is the
// original bytes, so Encode(Parse(b)) == b for an unmodified class.
func Encode(c *Class) []byte {
	var w bytes.Buffer

	writeU4(&w, magic)
	writeU2(&w, c.Minor)
	writeU2(&w, c.Major)
	// Pool first: mutations only ever append to it, and all appends happen
	// before Encode is called, so indices referenced below are stable.
	w.Write(c.Pool.encode())

	writeU2(&w, c.Access)
	writeU2(&w, c.thisIndex)
	writeU2(&w, c.superIndex)

	writeU2(&w, uint16(len(c.ifaceIndexes)))
	for _, idx := range c.ifaceIndexes {
		writeU2(&w, idx)
	}

	writeU2(&w, uint16(len(c.Fields)))
	for _, f := range c.Fields {
		writeU2(&w, f.Access)
		writeU2(&w, f.NameIndex)
		writeU2(&w, f.DescIndex)
		writeAttrs(&w, f.Attrs, nil)
	}

	writeU2(&w, uint16(len(c.Methods)))
	for _, m := range c.Methods {
		writeU2(&w, m.Access)
		writeU2(&w, m.nameIndex)
		writeU2(&w, m.descIndex)
		writeAttrs(&w, m.Attrs, func(i int) []byte {
			switch i {
			case m.visibleParamsAttr:
				return m.VisibleParams.encode()
			case m.invisibleParamsAttr:
				return m.InvisibleParams.encode()
			case m.invisibleAnnsAttr:
				return encodeAnnotationList(m.InvisibleAnns)
			}
			return nil
		})
	}

	writeAttrs(&w, c.Attrs, func(i int) []byte {
		if i == c.innerAttr {
			return encodeInnerClasses(c.Inner)
		}
		return nil
	})

	return w.Bytes()
}

// writeAttrs writes an attribute table. rebuild, when non-nil, may supply
// fresh payload bytes for an attribute index; a nil result means the stored
// raw data is current.
func writeAttrs(w *bytes.Buffer, attrs []Attribute, rebuild func(i int) []byte) {
	writeU2(w, uint16(len(attrs)))
	for i, a := range attrs {
		data := a.Data
		if rebuild != nil {
			if d := rebuild(i); d != nil {
				data = d
			}
		}
		writeU2(w, a.NameIndex)
		writeU4(w, uint32(len(data)))
		w.Write(data)
	}
}

func encodeInnerClasses(entries []InnerClass) []byte {
	out := binary.BigEndian.AppendUint16(nil, uint16(len(entries)))
	for _, ic := range entries {
		out = binary.BigEndian.AppendUint16(out, ic.innerIdx)
		out = binary.BigEndian.AppendUint16(out, ic.outerIdx)
		out = binary.BigEndian.AppendUint16(out, ic.nameIdx)
		out = binary.BigEndian.AppendUint16(out, ic.Access)
	}
	return out
}

func writeU2(w *bytes.Buffer, v uint16) {
	w.Write(binary.BigEndian.AppendUint16(nil, v))
}

func writeU4(w *bytes.Buffer, v uint32) {
	w.Write(binary.BigEndian.AppendUint32(nil, v))
}
