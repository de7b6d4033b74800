package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseData_JSON(t *testing.T) {
	fields, err := parseData(`{"campaign_name": "Spring", "leads_count": 3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["campaign_name"] != "Spring" {
		t.Errorf("unexpected name: %v", fields["campaign_name"])
	}
	if fields["leads_count"] != 3 {
		t.Errorf("expected int 3, got %#v", fields["leads_count"])
	}
}

func TestParseData_YAML(t *testing.T) {
	fields, err := parseData("status: paused\nregion: EU\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["status"] != "paused" || fields["region"] != "EU" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestParseData_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lead.yaml")
	if err := os.WriteFile(path, []byte("contact_email: a@b.co\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fields, err := parseData("@" + path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["contact_email"] != "a@b.co" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestParseData_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"missing file": "@/does/not/exist.json",
		"not a map":    "[1, 2]",
		"empty object": "{}",
		"bad syntax":   "{unclosed",
	}
	for name, in := range cases {
		if _, err := parseData(in); err == nil {
			t.Errorf("%s: expected error for %q", name, in)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseAnswers(t *testing.T) {
	got, err := parseAnswers([]string{"1=Acme Corp", " 2 = b2b ", "3=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(got))
	}
	if got[0].StepID != 1 || got[0].Value != "Acme Corp" {
		t.Errorf("unexpected first answer: %+v", got[0])
	}
	if got[1].StepID != 2 || got[1].Value != "b2b" {
		t.Errorf("unexpected second answer: %+v", got[1])
	}
	if got[2].Value != "a=b" {
		t.Errorf("only the first '=' separates, got %q", got[2].Value)
	}

	for _, bad := range []string{"novalue", "x=1"} {
		if _, err := parseAnswers([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFragmentOf(t *testing.T) {
	tests := map[string]string{
		"https://app.workairs.co/oauth/callback#code=abc&state=1": "code=abc&state=1",
		"#code=abc": "code=abc",
		"code=abc":  "code=abc",
	}
	for in, want := range tests {
		if got := fragmentOf(in); got != want {
			t.Errorf("fragmentOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "turn"); got != "1 turn" {
		t.Errorf("got %q", got)
	}
	if got := plural(3, "turn"); got != "3 turns" {
		t.Errorf("got %q", got)
	}
}
