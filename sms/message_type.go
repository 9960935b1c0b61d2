package sms

// MessageType is the TP-MTI field distinguishing a Deliver, Submit, or
// StatusReport PDU (the *Report variants share the MTI of the PDU they
// acknowledge and are told apart by direction).
type MessageType byte

// MessageTypes enumerates the TP-MTI values this package decodes and
// encodes (3GPP TS 23.040).
var MessageTypes = struct {
	Deliver       MessageType
	DeliverReport MessageType
	StatusReport  MessageType
	Command       MessageType
	Submit        MessageType
	SubmitReport  MessageType
}{
	0x00, 0x00,
	0x02, 0x02,
	0x01, 0x01,
}
