package units

import "strings"

// Lookup maps descriptor codes to human readable labels. Unknown codes are
// returned unchanged.
type Lookup struct {
	labels map[string]string
}

func (l *Lookup) Label(code string) string {
	key := strings.ToLower(strings.TrimSpace(code))
	if label, ok := l.labels[key]; ok {
		return label
	}
	return code
}

func NewAccessRightsLookup() *Lookup {
	return &Lookup{labels: map[string]string{
		"ro":         "Read only",
		"rw":         "Read/Write",
		"wo":         "Write only",
		"read":       "Read only",
		"write":      "Write only",
		"read/write": "Read/Write",
		"get":        "Read only",
		"set":        "Write only",
		"get/set":    "Read/Write",
	}}
}

func NewDataTypeLookup() *Lookup {
	return &Lookup{labels: map[string]string{
		// IODD
		"booleant":     "Boolean",
		"uintegert":    "Unsigned Integer",
		"integert":     "Integer",
		"float32t":     "Float (32 bit)",
		"stringt":      "String",
		"octetstringt": "Octet String",
		"timet":        "Time",
		"timespant":    "Time Span",
		"recordt":      "Record",
		"arrayt":       "Array",
		// EDS (CIP elementary types)
		"bool":         "Boolean",
		"sint":         "Integer (8 bit)",
		"int":          "Integer (16 bit)",
		"dint":         "Integer (32 bit)",
		"lint":         "Integer (64 bit)",
		"usint":        "Unsigned Integer (8 bit)",
		"uint":         "Unsigned Integer (16 bit)",
		"udint":        "Unsigned Integer (32 bit)",
		"ulint":        "Unsigned Integer (64 bit)",
		"real":         "Float (32 bit)",
		"lreal":        "Float (64 bit)",
		"string":       "String",
		"short_string": "Short String",
		"byte":         "Bit String (8 bit)",
		"word":         "Bit String (16 bit)",
		"dword":        "Bit String (32 bit)",
	}}
}
