package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Tracks"},
		[][]string{{"The Beatles", "10"}, {"Beatles"}},
		[]columnAlignment{alignLeft, alignRight},
		false,
	)
	for _, want := range []string{"Name", "Tracks", "The Beatles", "10", "Beatles"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("uncolored table contains escape codes")
	}
}

func TestRenderTable_NoHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}, nil, false); out != "" {
		t.Errorf("renderTable = %q, want empty", out)
	}
}

func TestYesNo(t *testing.T) {
	if yesNo(true) != "yes" || yesNo(false) != "no" {
		t.Error("yesNo mismatch")
	}
}
