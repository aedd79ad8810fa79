package draw

import "testing"

var colorTests = []struct {
	in      string
	want    uint32
	wantErr bool
}{
	{"#ff4545", 0xff4545, false},
	{"#222222", 0x222222, false},
	{"#ABABAB", 0xababab, false},
	{"ff4545", 0, true},
	{"#ff454", 0, true},
	{"#ff45456", 0, true},
	{"#zzzzzz", 0, true},
	{"", 0, true},
}

func TestParseColor(t *testing.T) {
	for _, tt := range colorTests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestToChar2b(t *testing.T) {
	chars, n := toChar2b([]rune("ab"))
	if n != 2 || len(chars) != 2 {
		t.Fatalf("toChar2b(ab) = %d chars", n)
	}
	if chars[0].Byte1 != 0 || chars[0].Byte2 != 'a' {
		t.Errorf("char 0 = %+v", chars[0])
	}

	chars, _ = toChar2b([]rune("é"))
	if chars[0].Byte1 != 0 || chars[0].Byte2 != 0xe9 {
		t.Errorf("non-ASCII char = %+v", chars[0])
	}

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	if _, n := toChar2b(long); n != 255 {
		t.Errorf("overlong text clamped to %d, want 255", n)
	}
}
