package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/varalys/reposcan/internal/types"
)

func sample() []types.Finding {
	return []types.Finding{
		{
			CommitID:   "0123456789abcdef0123456789abcdef01234567",
			CommitTime: "2023-05-01T12:00:00",
			FilePath:   "config.yaml",
			FileOID:    "89abcdef0123456789abcdef0123456789abcdef",
			RuleName:   "pw",
			Match:      "hunter2abc",
		},
	}
}

func TestPrintColumnsMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	PrintColumns(&buf, sample(), PrintOptions{NoColor: true})
	out := buf.String()
	if strings.Contains(out, "hunter2abc") {
		t.Fatal("matched value must be masked by default")
	}
	if !strings.Contains(out, "hunt…2abc") {
		t.Fatalf("expected masked value in output:\n%s", out)
	}
	if !strings.Contains(out, "Findings: 1") {
		t.Fatalf("expected summary footer:\n%s", out)
	}
}

func TestPrintColumnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintColumns(&buf, nil, PrintOptions{NoColor: true})
	if !strings.Contains(buf.String(), "No secrets found") {
		t.Fatalf("expected empty notice:\n%s", buf.String())
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sample(), PrintOptions{NoColor: true, Unmasked: true})
	out := buf.String()
	if !strings.Contains(out, "hunter2abc") {
		t.Fatalf("unmasked table should show the value:\n%s", out)
	}
	if !strings.Contains(out, "01234567") {
		t.Fatalf("expected shortened commit id:\n%s", out)
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	var decoded []types.Finding
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].Match != "hunter2abc" {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
	if !strings.Contains(buf.String(), `"rule_name"`) {
		t.Fatal("stable JSON keys must be snake_case")
	}
}

func TestWriteJSONNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("nil findings should encode as []: %q", buf.String())
	}
}

func TestMask(t *testing.T) {
	if Mask("short") != "********" {
		t.Fatal("short values fully masked")
	}
	if Mask("AKIA0000000000000000") != "AKIA…0000" {
		t.Fatalf("unexpected mask: %q", Mask("AKIA0000000000000000"))
	}
}
