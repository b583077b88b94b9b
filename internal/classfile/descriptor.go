package classfile

import "fmt"

// ParamTypes splits a method descriptor into its parameter type
// descriptors, e.g. "(Ljava/lang/String;I)V" -> ["Ljava/lang/String;", "I"].
func ParamTypes(desc string) ([]string, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, fmt.Errorf("classfile: malformed descriptor %q", desc)
	}
	var params []string
	i := 1
	for i < len(desc) && desc[i] != ')' {
		start := i
		for i < len(desc) && desc[i] == '[' {
			i++
		}
		if i >= len(desc) {
			return nil, fmt.Errorf("classfile: malformed descriptor %q", desc)
		}
		switch desc[i] {
		case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
			i++
		case 'L':
			for i < len(desc) && desc[i] != ';' {
				i++
			}
			if i >= len(desc) {
				return nil, fmt.Errorf("classfile: malformed descriptor %q", desc)
			}
			i++ // consume ';'
		default:
			return nil, fmt.Errorf("classfile: malformed descriptor %q", desc)
		}
		params = append(params, desc[start:i])
	}
	if i >= len(desc) || desc[i] != ')' {
		return nil, fmt.Errorf("classfile: malformed descriptor %q", desc)
	}
	return params, nil
}
