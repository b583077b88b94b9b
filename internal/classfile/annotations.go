package classfile

import (
	"encoding/binary"
	"fmt"
)

// Attribute names this package decodes. Everything else round-trips as
// opaque bytes.
const (
	attrVisibleParamAnns   = "RuntimeVisibleParameterAnnotations"
	attrInvisibleParamAnns = "RuntimeInvisibleParameterAnnotations"
	attrInvisibleAnns      = "RuntimeInvisibleAnnotations"
	attrInnerClasses       = "InnerClasses"
	attrCode               = "Code"
)

// Annotation is one annotation structure. The payload is kept in its
// encoded form; two annotations are considered the same when their type
// descriptors match, regardless of element values.
type Annotation struct {
	TypeDesc string
	raw      []byte // complete encoded annotation, starting at type_index
}

// Is reports whether the annotation has the given type descriptor.
func (a Annotation) Is(desc string) bool { return a.TypeDesc == desc }

// ParamAnnotations is one parameter-annotation channel of a method: a set
// of annotations per parameter position, plus the stored count byte that
// declares how many positions the array covers.
type ParamAnnotations struct {
	Count uint8
	Sets  [][]Annotation
}

// TrimLeading drops the first n parameter positions and recomputes the
// count byte from what remains.
func (pa *ParamAnnotations) TrimLeading(n int) {
	if n <= 0 || n > len(pa.Sets) {
		return
	}
	pa.Sets = pa.Sets[n:]
	pa.Count = uint8(len(pa.Sets))
}

func (pa *ParamAnnotations) encode() []byte {
	out := []byte{pa.Count}
	for _, set := range pa.Sets {
		out = binary.BigEndian.AppendUint16(out, uint16(len(set)))
		for _, a := range set {
			out = append(out, a.raw...)
		}
	}
	return out
}

func encodeAnnotationList(anns []Annotation) []byte {
	out := binary.BigEndian.AppendUint16(nil, uint16(len(anns)))
	for _, a := range anns {
		out = append(out, a.raw...)
	}
	return out
}

// newAnnotation builds an annotation with the given type descriptor and no
// element-value pairs, interning the descriptor in the pool.
func newAnnotation(p *ConstPool, desc string) (Annotation, error) {
	idx, err := p.AddUtf8(desc)
	if err != nil {
		return Annotation{}, err
	}
	raw := binary.BigEndian.AppendUint16(nil, idx)
	raw = binary.BigEndian.AppendUint16(raw, 0)
	return Annotation{TypeDesc: desc, raw: raw}, nil
}

func parseAnnotationList(data []byte, p *ConstPool) ([]Annotation, error) {
	r := &reader{b: data}
	n := int(r.u2())
	anns := make([]Annotation, 0, n)
	for i := 0; i < n; i++ {
		a, err := parseAnnotation(r, p)
		if err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	if r.err != nil {
		return nil, r.err
	}
	return anns, nil
}

func parseParamAnnotations(data []byte, p *ConstPool) (*ParamAnnotations, error) {
	r := &reader{b: data}
	count := r.u1()
	pa := &ParamAnnotations{Count: count, Sets: make([][]Annotation, 0, count)}
	for i := 0; i < int(count); i++ {
		n := int(r.u2())
		set := make([]Annotation, 0, n)
		for j := 0; j < n; j++ {
			a, err := parseAnnotation(r, p)
			if err != nil {
				return nil, err
			}
			set = append(set, a)
		}
		pa.Sets = append(pa.Sets, set)
	}
	if r.err != nil {
		return nil, r.err
	}
	return pa, nil
}

func parseAnnotation(r *reader, p *ConstPool) (Annotation, error) {
	start := r.off
	typeIdx := r.u2()
	pairs := int(r.u2())
	for i := 0; i < pairs; i++ {
		r.u2() // element_name_index
		if err := skipElementValue(r); err != nil {
			return Annotation{}, err
		}
	}
	if r.err != nil {
		return Annotation{}, r.err
	}
	desc, err := p.Utf8(typeIdx)
	if err != nil {
		return Annotation{}, fmt.Errorf("annotation type: %w", err)
	}
	return Annotation{TypeDesc: desc, raw: r.b[start:r.off]}, nil
}

// skipElementValue advances past one element_value structure (JVMS §4.7.16.1)
// without interpreting it.
func skipElementValue(r *reader) error {
	tag := r.u1()
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		r.u2()
	case 'e':
		r.u2()
		r.u2()
	case '@':
		r.u2() // type_index
		pairs := int(r.u2())
		for i := 0; i < pairs; i++ {
			r.u2()
			if err := skipElementValue(r); err != nil {
				return err
			}
		}
	case '[':
		n := int(r.u2())
		for i := 0; i < n; i++ {
			if err := skipElementValue(r); err != nil {
				return err
			}
		}
	default:
		if r.err != nil {
			return r.err
		}
		return fmt.Errorf("element value: unknown tag %q", tag)
	}
	return r.err
}
