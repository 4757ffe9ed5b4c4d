package core

import (
	"strconv"
	"testing"
)

func TestGenerateCodeWidthAndRange(t *testing.T) {
	for _, width := range []int{4, 6, 8} {
		lo := 1
		for i := 1; i < width; i++ {
			lo *= 10
		}
		for i := 0; i < 200; i++ {
			code := generateCode(width)
			if len(code) != width {
				t.Fatalf("generateCode(%d) = %q, wrong width", width, code)
			}
			n, err := strconv.Atoi(code)
			if err != nil {
				t.Fatalf("generateCode(%d) = %q, not numeric", width, code)
			}
			if n < lo || n > 10*lo-1 {
				t.Fatalf("generateCode(%d) = %d, out of range [%d, %d]", width, n, lo, 10*lo-1)
			}
		}
	}
}

func TestGenerateCodeDefaultsWidth(t *testing.T) {
	if got := generateCode(0); len(got) != DefaultCodeLength {
		t.Errorf("generateCode(0) = %q, want %d digits", got, DefaultCodeLength)
	}
}
