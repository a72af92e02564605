package util

import (
	"fmt"
	"time"
)

var byteUnits = []struct {
	size int64
	name string
}{
	{1 << 30, "GB"},
	{1 << 20, "MB"},
	{1 << 10, "KB"},
}

// Human formats a byte count. Negative counts come from responses without a
// Content-Length and print as "unknown".
func Human(n int64) string {
	if n < 0 {
		return "unknown"
	}

	for _, u := range byteUnits {
		if n >= u.size {
			return fmt.Sprintf("%.2f %s", float64(n)/float64(u.size), u.name)
		}
	}

	return fmt.Sprintf("%d B", n)
}

// Rate formats n bytes over d as a per-second figure.
func Rate(n int64, d time.Duration) string {
	if d <= 0 || n <= 0 {
		return "0 B/s"
	}

	return Human(int64(float64(n)/d.Seconds())) + "/s"
}
