package units

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/berfenger/descview/internal/core/domain"
)

// IO-Link standard unit codes seen in device descriptors. EDS files carry
// free-text units which are passed through.
var unitSymbols = map[string]string{
	"1000": "K",
	"1001": "°C",
	"1002": "°F",
	"1010": "m",
	"1011": "km",
	"1012": "cm",
	"1013": "mm",
	"1014": "µm",
	"1034": "m³",
	"1038": "l",
	"1054": "s",
	"1056": "ms",
	"1057": "µs",
	"1058": "min",
	"1059": "h",
	"1061": "m/s",
	"1077": "Hz",
	"1081": "kHz",
	"1083": "1/min",
	"1120": "N",
	"1130": "Pa",
	"1133": "kPa",
	"1137": "bar",
	"1138": "mbar",
	"1141": "psi",
	"1209": "A",
	"1211": "mA",
	"1240": "V",
	"1243": "mV",
	"1342": "%",
	"1347": "m³/h",
	"1351": "l/s",
	"1352": "l/min",
	"1383": "lx",
}

// Formatter renders default values with their unit symbol.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// Symbol resolves an IO-Link unit code; anything else is returned trimmed.
func (f *Formatter) Symbol(unitCode string) string {
	code := strings.TrimSpace(unitCode)
	if symbol, ok := unitSymbols[code]; ok {
		return symbol
	}
	return code
}

// Format renders numeric values with the given number of decimals. Values
// with no default render as N/A regardless of unit.
func (f *Formatter) Format(value any, unitCode string, precision int) string {
	if value == nil {
		return domain.NOT_AVAILABLE
	}
	text := formatNumber(value, precision)
	symbol := f.Symbol(unitCode)
	if symbol == "" {
		return text
	}
	return text + " " + symbol
}

func formatNumber(value any, precision int) string {
	if precision < 0 {
		precision = -1
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', precision, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', precision, 32)
	case int:
		return strconv.FormatFloat(float64(v), 'f', precision, 64)
	case int64:
		return strconv.FormatFloat(float64(v), 'f', precision, 64)
	case uint64:
		return strconv.FormatFloat(float64(v), 'f', precision, 64)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return strconv.FormatFloat(n, 'f', precision, 64)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(value)
}
