package fonts

// WinAnsi (cp1252) encoding. Codes 0x00-0x7F match ASCII and 0xA0-0xFF
// match Latin-1; the 0x80-0x9F block carries the Windows additions.

var winAnsiHigh = [32]rune{
	0x80 - 0x80: '€', // euro
	0x82 - 0x80: '‚',
	0x83 - 0x80: 'ƒ',
	0x84 - 0x80: '„',
	0x85 - 0x80: '…',
	0x86 - 0x80: '†',
	0x87 - 0x80: '‡',
	0x88 - 0x80: 'ˆ',
	0x89 - 0x80: '‰',
	0x8A - 0x80: 'Š',
	0x8B - 0x80: '‹',
	0x8C - 0x80: 'Œ',
	0x8E - 0x80: 'Ž',
	0x91 - 0x80: '‘',
	0x92 - 0x80: '’',
	0x93 - 0x80: '“',
	0x94 - 0x80: '”',
	0x95 - 0x80: '•',
	0x96 - 0x80: '–',
	0x97 - 0x80: '—',
	0x98 - 0x80: '˜',
	0x99 - 0x80: '™',
	0x9A - 0x80: 'š',
	0x9B - 0x80: '›',
	0x9C - 0x80: 'œ',
	0x9E - 0x80: 'ž',
	0x9F - 0x80: 'Ÿ',
}

var winAnsiReverse = buildWinAnsiReverse()

func buildWinAnsiReverse() map[rune]byte {
	m := make(map[rune]byte, 32)
	for code, r := range winAnsiHigh {
		if r != 0 {
			m[r] = byte(0x80 + code)
		}
	}
	return m
}

// EncodeWinAnsiRune maps a rune to its WinAnsi code.
func EncodeWinAnsiRune(r rune) (byte, bool) {
	switch {
	case r < 0x80:
		return byte(r), true
	case r >= 0xA0 && r <= 0xFF:
		return byte(r), true
	}
	if code, ok := winAnsiReverse[r]; ok {
		return code, true
	}
	return 0, false
}

// EncodeWinAnsi encodes a string, substituting '?' for runes outside the
// code page.
func EncodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		code, ok := EncodeWinAnsiRune(r)
		if !ok {
			code = '?'
		}
		out = append(out, code)
	}
	return out
}

// DecodeWinAnsi maps WinAnsi bytes back to a string. Unassigned codes in
// the 0x80 block decode to U+FFFD.
func DecodeWinAnsi(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, code := range b {
		switch {
		case code < 0x80 || code >= 0xA0:
			runes = append(runes, rune(code))
		default:
			r := winAnsiHigh[code-0x80]
			if r == 0 {
				r = '�'
			}
			runes = append(runes, r)
		}
	}
	return string(runes)
}
