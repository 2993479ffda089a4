package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPrinterMessages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	p.StageStart("provision environment")
	p.StageDone("provision environment", 1500*time.Millisecond)
	p.Skip("provisioning", "sandbox already present")
	p.CheckResult("backend", true)
	p.CheckResult("worker", false)
	p.ReleaseStep("tag v9.9.0 pushed")
	p.Warn("journal unavailable")

	out := buf.String()
	for _, want := range []string{
		"provision environment",
		"(1.5s)",
		"skipped",
		"sandbox already present",
		"backend",
		"passed",
		"worker",
		"failed",
		"tag v9.9.0 pushed",
		"warning",
		"journal unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPackageTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)
	p.PackageTable([]PackageRow{
		{Name: "ui-core", Dir: "www/base", Role: "dependency", Kind: "frontend"},
		{Name: "backend", Dir: "master", Role: "leaf", Kind: "backend"},
	})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	for _, want := range []string{"PACKAGE", "ui-core", "www/base", "dependency", "backend"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestRunTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)
	started := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	p.RunTable([]RunRow{
		{ID: "0c9d1f2e-aaaa-bbbb-cccc-ddddeeeeffff", Command: "build deps", Outcome: "ok", StartedAt: started, Duration: 3 * time.Second},
		{ID: "11112222-3333-4444-5555-666677778888", Command: "tarballs", Outcome: "failed", StartedAt: started, Duration: time.Second},
	})

	out := buf.String()
	if !strings.Contains(out, "0c9d1f2e") {
		t.Error("run ID not shortened into the table")
	}
	if strings.Contains(out, "0c9d1f2e-aaaa") {
		t.Error("full run ID leaked into the table")
	}
	for _, want := range []string{"build deps", "tarballs", "failed", "2026-08-30 14:00", "3.0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestRunTableEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithWriter(&buf).RunTable(nil)
	if !strings.Contains(buf.String(), "no recorded runs") {
		t.Errorf("output = %q", buf.String())
	}
}
