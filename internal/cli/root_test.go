package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// Focused tests keeping coverage high without redundancy.

func TestNormalizeCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"normalize", "10.0.0.0,10.0.0.7", "192.168.1.1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "10.0.0.0/29") || !strings.Contains(out, "192.168.1.1") {
		t.Fatalf("normalize output = %q", out)
	}
}

func TestNormalizeCmdInvalidEntry(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"normalize", "garbage"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for invalid entry")
	}
}

func TestNormalizeCmdJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"normalize", "10.0.0.1", "-o", "json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("normalize json failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v (%s)", err, buf.String())
	}
	if decoded["schema"] != "iplistnorm/v1" {
		t.Fatalf("missing schema wrapper: %v", decoded)
	}
}

func TestSerializeCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"serialize", "10.0.0.1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	// 10.0.0.1 -> 0a000001, mask 32 -> "20" in hex.
	if got := strings.TrimSpace(buf.String()); got != "0a00000120" {
		t.Fatalf("serialize output = %q, want %q", got, "0a00000120")
	}
}

func TestValidateCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"validate", "10.0.0.1", "garbage", "10.0.0.2", "--n", "5"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "2" {
		t.Fatalf("validate output = %q, want %q", got, "2")
	}
}

func TestValidateStreamCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetIn(strings.NewReader("10.0.0.1\ngarbage\n10.0.0.2\n"))
	cmd.SetArgs([]string{"validate-stream", "--n", "5"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate-stream failed: %v", err)
	}
}

func TestRangeTooLargeRequiresForce(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	prevForce := defaultRangeForceThreshold
	defaultRangeForceThreshold = 10
	defer func() { defaultRangeForceThreshold = prevForce }()
	cmd.SetArgs([]string{"normalize", "10.0.0.0,10.0.1.255"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected RangeTooLargeError")
	}
	buf.Reset()
	cmd = NewRootCmd(buf)
	cmd.SetArgs([]string{"normalize", "10.0.0.0,10.0.1.255", "--force"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("--force should bypass the guard: %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil || !strings.Contains(buf.String(), "version") {
		t.Fatalf("version failed: %v output=%s", err, buf.String())
	}
}

func TestCompletionCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd(buf)
	cmd.SetArgs([]string{"completion", "bash"})
	if err := cmd.Execute(); err != nil || !strings.Contains(buf.String(), "iplistnorm") {
		t.Fatalf("completion failed: %v", err)
	}
}
