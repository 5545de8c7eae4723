package versions

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fixed-width UTC layout: lexicographic order equals chronological order.
const stampLayout = "20060102T150405.000000"

func FormatStamp(t time.Time) string { return t.UTC().Format(stampLayout) }

// NextStamp returns a stamp for now that sorts after every known stamp. When the clock
// has not advanced past the newest known stamp, the newest stamp gets a zero-padded
// counter suffix ("<base>-000001", "<base>-000002", ...).
func NextStamp(now time.Time, known []string) string {
	s := FormatStamp(now)
	newest := ""
	for _, k := range known {
		if k > newest {
			newest = k
		}
	}
	if s > newest {
		return s
	}
	base, n := splitStamp(newest)
	return fmt.Sprintf("%s-%06d", base, n+1)
}

func splitStamp(s string) (string, int) {
	i := strings.LastIndexByte(s, '-')
	if i < 0 {
		return s, 0
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s, 0
	}
	return s[:i], n
}
