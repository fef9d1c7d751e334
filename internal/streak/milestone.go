package streak

// milestones below 1000; from 1000 on every multiple of 100 counts too.
var milestones = []int{7, 14, 21, 30, 50, 100, 150, 200, 365, 500, 1000}

// IsMilestone reports whether a streak of n days is a milestone.
func IsMilestone(n int) bool {
	if n >= 1000 {
		return n%100 == 0
	}
	for _, m := range milestones {
		if m == n {
			return true
		}
	}
	return false
}

// NextMilestone returns the smallest milestone strictly greater than n.
func NextMilestone(n int) int {
	for _, m := range milestones {
		if m > n {
			return m
		}
	}
	return (n/100 + 1) * 100
}

// Celebrate reports whether a streak of n days fires a milestone given the
// highest milestone already celebrated.
func Celebrate(n, watermark int) (int, bool) {
	if n > watermark && IsMilestone(n) {
		return n, true
	}
	return 0, false
}
