package fingerprint

import (
	"crypto/md5"
	"testing"
)

func TestHashMatchesStandardMD5(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("hello"),
		[]byte("\\begin{frame}A\\end{frame}"),
		make([]byte, 10000),
	}
	for _, c := range cases {
		want := md5.Sum(c)
		got := Hash(c)
		if FP(want) != got {
			t.Fatalf("Hash(%q) = %x, want %x", c, got, want)
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	b := []byte("repeat me")
	a := Hash(b)
	c := Hash(b)
	if a != c {
		t.Fatalf("hash not deterministic: %x != %x", a, c)
	}
}

func TestHexLowercase(t *testing.T) {
	fp := Hash([]byte("x"))
	hexStr := fp.Hex()
	if len(hexStr) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%s)", len(hexStr), hexStr)
	}
	for _, r := range hexStr {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("non-lowercase-hex char %q in %s", r, hexStr)
		}
	}
}
