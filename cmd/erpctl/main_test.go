package main

import (
	"bytes"
	"strings"
	"testing"

	"interiors-erp/internal/auth"
)

func TestHashPasswordCmd(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"hash-password", "correct-horse"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if !auth.CheckPassword(hash, "correct-horse") {
		t.Errorf("printed hash %q does not verify", hash)
	}
}

func TestHashPasswordCmd_RejectsShortPassword(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hash-password", "abc"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for short password")
	}
}
