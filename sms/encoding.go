package sms

// Encoding is the TP-DCS character-set byte of a message's text data.
type Encoding byte

// Encodings enumerates the character sets a Message's text may be encoded
// in. The three Gsm7Bit values are the DCS codes the format actually uses
// in practice (0x00 is the default alphabet; 0x01/0x11 appear on class/
// compression variants some networks send).
var Encodings = struct {
	Gsm7Bit   Encoding
	UCS2      Encoding
	Gsm7Bit_2 Encoding
	Gsm7Bit_3 Encoding
}{
	0x00, 0x08, 0x11, 0x01,
}
