package numeral

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Normalize converts a user-supplied decimal string with ambiguous locale
// formatting into a canonical amount. A comma is always taken as the decimal
// separator (dots before it are thousands groups). Without a comma, a single
// trailing two-digit group after the last dot keeps the dot as decimal point;
// any other dot layout is treated as thousands grouping. Unparseable input
// yields 0.
func Normalize(raw string) float64 {
	str := strings.TrimSpace(raw)
	if str == "" {
		return 0
	}

	switch {
	case strings.Contains(str, ","):
		str = strings.ReplaceAll(str, ".", "")
		idx := strings.LastIndex(str, ",")
		str = strings.ReplaceAll(str[:idx], ",", "") + "." + str[idx+1:]
	case strings.Contains(str, "."):
		idx := strings.LastIndex(str, ".")
		if len(str)-idx-1 != 2 {
			str = strings.ReplaceAll(str, ".", "")
		}
	}

	result, err := strconv.ParseFloat(str, 64)
	if err != nil {
		zap.L().Debug("failed to parse amount", zap.String("raw", raw), zap.String("normalized", str))
		return 0
	}
	return result
}
