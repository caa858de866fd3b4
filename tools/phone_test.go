package tools

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0828868631", "27828868631"},
		{"082 886 8631", "27828868631"},
		{"(082) 886-8631", "27828868631"},
		{"+27 82 886 8631", "27828868631"},
		{"27828868631", "27828868631"},
		{"828868631", "27828868631"},
		{"", "27"},
	}

	for _, tt := range tests {
		got := NormalizePhone(tt.raw)
		if got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizePhoneTrunkZero(t *testing.T) {
	inputs := []string{"0837787970", "0111234567", "0000", "0"}
	for _, in := range inputs {
		want := DefaultDialingCode + in[1:]
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNormalizePhoneIsIdempotent(t *testing.T) {
	for _, in := range []string{"0828868631", "+27 82 886 8631", "828868631"} {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone(NormalizePhone(%q)) = %q; want %q", in, twice, once)
		}
	}
}

func TestNormalizePhoneWithCode(t *testing.T) {
	if got := NormalizePhoneWithCode("011 98765-4321", "55"); got != "5511987654321" {
		t.Errorf("NormalizePhoneWithCode = %q; want %q", got, "5511987654321")
	}
}
