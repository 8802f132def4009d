package version

import "testing"

func TestStringNotEmpty(t *testing.T) {
	if String() == "" {
		t.Error("String() is empty")
	}
	if Commit() == "" || Date() == "" {
		t.Error("Commit or Date is empty")
	}
}

func TestLdflagsWin(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()
	if String() != "v1.2.3" {
		t.Errorf("String() = %q", String())
	}
}
