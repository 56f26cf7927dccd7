package utils

import (
	"fmt"
	"math"
)

// FormatTime 将秒数格式化为 m:ss
// NaN、无穷大和负数一律显示为 0:00
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
