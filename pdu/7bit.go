package pdu

import "fmt"

// Esc is the escape septet (0x1B) that selects the GSM 7-bit extension
// table for the septet that follows it (3GPP TS 23.038 Annex A).
const Esc = 0x1B

// basicTable is the GSM 7-bit default alphabet, indexed by septet value.
var basicTable = [128]rune{
	'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
	'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', 0, 'Æ', 'æ', 'ß', 'É',
	' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
	'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
}

// extTable holds the extension-table characters reachable by prefixing the
// septet with Esc. Unlisted septets fall through to a space per spec.
var extTable = map[byte]rune{
	0x0A: '\f',
	0x14: '^',
	0x28: '{',
	0x29: '}',
	0x2F: '\\',
	0x3C: '[',
	0x3D: '~',
	0x3E: ']',
	0x40: '|',
	0x65: '€',
}

var (
	basicReverse = func() map[rune]byte {
		m := make(map[rune]byte, len(basicTable))
		for i, r := range basicTable {
			if r == 0 {
				continue
			}
			m[r] = byte(i)
		}
		return m
	}()
	extReverse = func() map[rune]byte {
		m := make(map[rune]byte, len(extTable))
		for k, v := range extTable {
			m[v] = k
		}
		return m
	}()
)

// fallbackSeptet is substituted for runes that the default alphabet and its
// extension table cannot represent.
const fallbackSeptet = 0x3F // '?'

// Is7BitEncodable reports whether str can be represented losslessly in the
// GSM 7-bit default alphabet (plus its extension table).
func Is7BitEncodable(str string) bool {
	for _, r := range str {
		if _, ok := basicReverse[r]; ok {
			continue
		}
		if _, ok := extReverse[r]; ok {
			continue
		}
		return false
	}
	return true
}

// Encode7Bit encodes str into GSM 7-bit packed octets. Runes outside the
// default alphabet and its extension table are replaced with '?'. When the
// last octet would carry 7 unused bits, a CR septet fills them; a text
// ending in CR on an octet boundary gets a second CR so that the padding
// stays distinguishable. Decode7Bit drops that padding CR again.
func Encode7Bit(str string) []byte {
	septets := make([]byte, 0, len(str))
	for _, r := range str {
		if s, ok := basicReverse[r]; ok {
			septets = append(septets, s)
			continue
		}
		if s, ok := extReverse[r]; ok {
			septets = append(septets, Esc, s)
			continue
		}
		septets = append(septets, fallbackSeptet)
	}
	switch n := len(septets); {
	case n%8 == 7:
		septets = append(septets, 0x0D) // fill the 7 spare bits with CR
	case n > 0 && n%8 == 0 && septets[n-1] == 0x0D:
		septets = append(septets, 0x0D) // a final CR on an octet boundary is doubled
	}
	return pack7Bit(septets)
}

// Decode7Bit unpacks GSM 7-bit packed octets into a UTF-8 string, dropping
// the CR padding septet Encode7Bit adds.
func Decode7Bit(octets []byte) (string, error) {
	septets := unpack7Bit(octets)
	if n := len(septets); n > 0 && septets[n-1] == 0x0D && (n%8 == 0 || (n%8 == 1 && n >= 2 && septets[n-2] == 0x0D)) {
		septets = septets[:n-1]
	}
	runes := make([]rune, 0, len(septets))
	for i := 0; i < len(septets); i++ {
		s := septets[i]
		if s == Esc && i+1 < len(septets) {
			i++
			if r, ok := extTable[septets[i]]; ok {
				runes = append(runes, r)
			} else {
				runes = append(runes, ' ')
			}
			continue
		}
		if int(s) < len(basicTable) && basicTable[s] != 0 {
			runes = append(runes, basicTable[s])
		} else {
			runes = append(runes, '?')
		}
	}
	return string(runes), nil
}

// pack7Bit packs a stream of 7-bit septets into 8-bit octets, per the
// bit-shuffling described in 3GPP TS 23.038 §6.1.2.1.
func pack7Bit(septets []byte) []byte {
	octets := make([]byte, 0, (len(septets)*7+7)/8)
	var buffer uint16
	var bufLen uint
	for _, s := range septets {
		buffer |= uint16(s&0x7F) << bufLen
		bufLen += 7
		for bufLen >= 8 {
			octets = append(octets, byte(buffer&0xFF))
			buffer >>= 8
			bufLen -= 8
		}
	}
	if bufLen > 0 {
		octets = append(octets, byte(buffer&0xFF))
	}
	return octets
}

// unpack7Bit is the inverse of pack7Bit. The septet count is inferred as
// floor(len(octets)*8/7); callers that know the exact septet count (e.g.
// from a PDU's user-data-length field) should trim the result themselves.
func unpack7Bit(octets []byte) []byte {
	nSeptets := len(octets) * 8 / 7
	septets := make([]byte, 0, nSeptets)
	var buffer uint16
	var bufLen uint
	octIdx := 0
	for len(septets) < nSeptets {
		if bufLen < 7 && octIdx < len(octets) {
			buffer |= uint16(octets[octIdx]) << bufLen
			bufLen += 8
			octIdx++
		}
		septets = append(septets, byte(buffer&0x7F))
		buffer >>= 7
		bufLen -= 7
	}
	return septets
}

// displayPack renders packed septet octets as a hex string for log lines.
func displayPack(octets []byte) string {
	return fmt.Sprintf("% X", octets)
}
