package label

import "strings"

// WireTypeFields is the display decomposition of a wire type descriptor.
type WireTypeFields struct {
	Strands  string
	Diameter string
	Display  string
}

// ParseWireType splits a descriptor like "FLRY-A T2 (7/0.21)" into strand
// count and conductor diameter. Malformed input degrades to "?" placeholders
// with the raw descriptor as the display string; this never fails.
func ParseWireType(raw string) WireTypeFields {
	fields := WireTypeFields{Strands: "?", Diameter: "?", Display: raw}
	if raw == "" {
		fields.Display = Placeholder
		return fields
	}

	open := strings.LastIndex(raw, "(")
	end := strings.LastIndex(raw, ")")
	if open < 0 || end < open {
		return fields
	}
	inner := raw[open+1 : end]
	slash := strings.Index(inner, "/")
	if slash < 0 {
		return fields
	}

	strands := strings.TrimSpace(inner[:slash])
	diameter := strings.TrimSpace(inner[slash+1:])
	if strands == "" || diameter == "" {
		return fields
	}

	fields.Strands = strands
	fields.Diameter = diameter
	fields.Display = raw + " (" + strands + "/" + diameter + ")"
	return fields
}
