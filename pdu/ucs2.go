package pdu

import (
	"errors"
	"unicode/utf16"
)

// ErrUnevenNumber happens when the number of octets (bytes) in the input is uneven.
var ErrUnevenNumber = errors.New("decode ucs2: uneven number of octets")

// EncodeUcs2 encodes the given UTF-8 text into UCS2 (UTF-16) encoding and returns the produced octets.
func EncodeUcs2(str string) []byte {
	buf := utf16.Encode([]rune(str))
	octets := make([]byte, 0, len(buf)*2)
	for _, n := range buf {
		octets = append(octets, byte(n&0xFF00>>8), byte(n&0x00FF))
	}
	return octets
}

// DecodeUcs2 decodes the given UCS2 (UTF-16) octet data into a UTF-8 encoded
// string. Octets are big-endian as 3GPP TS 23.038 prescribes; some modems
// send the pair order swapped, so swapped selects that variant instead.
func DecodeUcs2(octets []byte, swapped bool) (str string, err error) {
	if len(octets)%2 != 0 {
		err = ErrUnevenNumber
		return
	}
	buf := make([]uint16, 0, len(octets)/2)
	for i := 0; i < len(octets); i += 2 {
		hi, lo := octets[i], octets[i+1]
		if swapped {
			hi, lo = lo, hi
		}
		buf = append(buf, uint16(hi)<<8|uint16(lo))
	}
	runes := utf16.Decode(buf)
	return string(runes), nil
}
