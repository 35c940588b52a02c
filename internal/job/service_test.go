package job

import "testing"

func TestJobVisibility(t *testing.T) {
	const owner = "employer-1"
	cases := []struct {
		status string
		viewer string
		want   bool
	}{
		{"active", "someone-else", true},
		{"active", owner, true},
		{"active", "", true},
		{"paused", "someone-else", true},
		{"paused", "", true},
		{"paused", owner, true},
		{"closed", owner, true},
		{"closed", "someone-else", false},
		{"closed", "", false},
	}
	for _, c := range cases {
		if got := visibleTo(c.status, owner, c.viewer); got != c.want {
			t.Errorf("visibleTo(%q, owner, %q) = %v, want %v", c.status, c.viewer, got, c.want)
		}
	}
}
