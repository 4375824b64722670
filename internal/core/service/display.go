package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/core/port"
)

// DisplayValue renders the default value of a populated cell.
func DisplayValue(p *domain.ParameterRecord, formatter port.UnitFormatter, precision int) string {
	if p == nil {
		return ""
	}
	if p.Units != "" && formatter != nil {
		return formatter.Format(p.DefaultValue, p.Units, precision)
	}
	if p.DefaultValue == nil {
		return domain.NOT_AVAILABLE
	}
	return RawText(p.DefaultValue)
}

// RawText renders an opaque descriptor value as plain text.
func RawText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
