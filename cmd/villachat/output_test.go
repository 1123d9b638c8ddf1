package main

import "testing"

func TestPaint(t *testing.T) {
	defer func(prev bool) { noColor = prev }(noColor)

	noColor = false
	if got := paint(ansiGreen, "done"); got != ansiGreen+"done"+ansiReset {
		t.Errorf("paint = %q, want wrapped in green and reset", got)
	}

	noColor = true
	if got := paint(ansiGreen, "done"); got != "done" {
		t.Errorf("paint with --no-color = %q, want bare text", got)
	}
}
