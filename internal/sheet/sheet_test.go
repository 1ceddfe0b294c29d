package sheet

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestBuild(t *testing.T) {
	data, err := Build(
		Table{Name: "User", Headers: []string{"Name", "Email"}, Rows: [][]any{{"Asha", "asha@example.com"}}},
		Table{Name: "Bills", Headers: []string{"Number", "Net"}, Rows: [][]any{{"INV-2026-0001", 734.6}, {"=HYPERLINK()", 1.5}}},
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "User" || got[1] != "Bills" {
		t.Fatalf("sheets = %v", got)
	}
	if v, _ := f.GetCellValue("User", "B2"); v != "asha@example.com" {
		t.Errorf("User!B2 = %q", v)
	}
	if v, _ := f.GetCellValue("Bills", "A1"); v != "Number" {
		t.Errorf("Bills!A1 = %q", v)
	}
	if v, _ := f.GetCellValue("Bills", "B2"); v != "734.6" {
		t.Errorf("Bills!B2 = %q", v)
	}
	if v, _ := f.GetCellValue("Bills", "A3"); v != "'=HYPERLINK()" {
		t.Errorf("Bills!A3 = %q, want sanitized", v)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"Plywood":  "Plywood",
		"=1+1":     "'=1+1",
		"-5":       "'-5",
		"@SUM(A1)": "'@SUM(A1)",
	}
	for in, want := range tests {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
