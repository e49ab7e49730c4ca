package util

import "testing"

func TestNormalizeCPF(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"123.456.789-01", "12345678901", false},
		{"12345678901", "12345678901", false},
		{" 123 456 789 01 ", "12345678901", false},
		{"1234567890", "", true},
		{"123.456.789-012", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeCPF(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v", tc.in, got, err)
		}
	}
}

func TestValidateEmailAcceptsBlank(t *testing.T) {
	if err := ValidateEmail(""); err != nil {
		t.Fatalf("blank email must be accepted: %v", err)
	}
	if err := ValidateEmail("ana@empresa.com.br"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if err := ValidateEmail("ana@"); err == nil {
		t.Fatalf("expected error for malformed email")
	}
}
