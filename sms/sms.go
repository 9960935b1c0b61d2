// Package sms allows to encode and decode SMS messages into/from PDU format as described in 3GPP TS 23.040.
package sms

import (
	"bytes"
	"errors"
	"io"

	"github.com/linux-mobile-broadband/ModemManager-sub009/pdu"
)

// Common errors.
var (
	ErrUnknownEncoding               = errors.New("sms: unsupported encoding")
	ErrUnknownMessageType            = errors.New("sms: unsupported message type")
	ErrIncorrectSize                 = errors.New("sms: decoded incorrect size of field")
	ErrNonRelative                   = errors.New("sms: non-relative validity period support is not implemented yet")
	ErrUnsupportedTypeOfNumber       = errors.New("sms: unsupported type-of-number")
	ErrIncorrectUserDataHeaderLength = errors.New("sms: incorrect user data header length")
)

// Message represents an SMS message, including some advanced fields. This
// is a user-friendly high-level representation that should be used around.
// Complies with 3GPP TS 23.040.
type Message struct {
	Type                 MessageType
	Encoding             Encoding
	VP                   ValidityPeriod
	VPFormat             ValidityPeriodFormat
	ServiceCenterTime    Timestamp
	ServiceCenterAddress PhoneNumber
	Address              PhoneNumber
	Text                 string

	// Advanced
	MessageReference         byte
	ReplyPathExists          bool
	UserDataStartsWithHeader bool
	StatusReportIndication   bool
	StatusReportRequest      bool
	MoreMessagesToSend       bool
	LoopPrevention           bool
	RejectDuplicates         bool

	// Status-report fields, populated when Type is MessageTypes.StatusReport.
	Status        Status
	DischargeTime Timestamp
}

func blocks(n, block int) int {
	if n%block == 0 {
		return n / block
	}
	return n/block + 1
}

func encodeText(text string, enc Encoding) ([]byte, byte, error) {
	switch enc {
	case Encodings.Gsm7Bit, Encodings.Gsm7Bit_2, Encodings.Gsm7Bit_3:
		// UDL counts septets: one per default-alphabet rune, two for an
		// extension-table rune (escape plus character).
		septets := 0
		for _, r := range text {
			septets += len(pdu.Encode7Bit(string(r)))
		}
		return pdu.Encode7Bit(text), byte(septets), nil
	case Encodings.UCS2:
		octets := pdu.EncodeUcs2(text)
		return octets, byte(len(octets)), nil
	default:
		return nil, 0, ErrUnknownEncoding
	}
}

func decodeText(octets []byte, udl byte, enc Encoding, swapped bool) (string, error) {
	switch enc {
	case Encodings.Gsm7Bit, Encodings.Gsm7Bit_2, Encodings.Gsm7Bit_3:
		text, err := pdu.Decode7Bit(octets)
		if err != nil {
			return "", err
		}
		return cutStr(text, int(udl)), nil
	case Encodings.UCS2:
		return pdu.DecodeUcs2(octets, swapped)
	default:
		return "", ErrUnknownEncoding
	}
}

func cutStr(str string, n int) string {
	runes := []rune(str)
	if n < len(str) {
		return string(runes[0:n])
	}
	return str
}

// PDU serializes the message into octets ready to be transferred.
// Returns the number of TPDU bytes in the produced PDU.
// Complies with 3GPP TS 23.040.
func (s *Message) PDU() (int, []byte, error) { //nolint:funlen
	var buf bytes.Buffer
	if len(s.ServiceCenterAddress) < 1 {
		buf.WriteByte(0x00) // SMSC info length
	} else {
		_, octets, err := s.ServiceCenterAddress.PDU()
		if err != nil {
			return 0, nil, err
		}
		buf.WriteByte(byte(len(octets)))
		buf.Write(octets)
	}

	switch s.Type {
	case MessageTypes.Deliver:
		var tpdu smsDeliver
		tpdu.MessageTypeIndicator = byte(s.Type)
		tpdu.MoreMessagesToSend = s.MoreMessagesToSend
		tpdu.LoopPrevention = s.LoopPrevention
		tpdu.ReplyPath = s.ReplyPathExists
		tpdu.UserDataHeaderIndicator = s.UserDataStartsWithHeader
		tpdu.StatusReportIndication = s.StatusReportIndication

		addrLen, addr, err := s.Address.PDU()
		if err != nil {
			return 0, nil, err
		}
		var addrBuf bytes.Buffer
		addrBuf.WriteByte(byte(addrLen))
		addrBuf.Write(addr)
		tpdu.OriginatingAddress = addrBuf.Bytes()

		tpdu.ProtocolIdentifier = 0x00 // Short Message Type 0
		tpdu.DataCodingScheme = byte(s.Encoding)
		tpdu.ServiceCentreTimestamp = s.ServiceCenterTime.PDU()

		userData, udl, err := encodeText(s.Text, s.Encoding)
		if err != nil {
			return 0, nil, err
		}
		tpdu.UserData = userData
		tpdu.UserDataLength = udl

		n, err := buf.Write(tpdu.Bytes())
		if err != nil {
			return 0, nil, err
		}
		return n, buf.Bytes(), nil
	case MessageTypes.Submit:
		var tpdu smsSubmit
		tpdu.MessageTypeIndicator = byte(s.Type)
		tpdu.RejectDuplicates = s.RejectDuplicates
		tpdu.ValidityPeriodFormat = byte(s.VPFormat)
		tpdu.ReplyPath = s.ReplyPathExists
		tpdu.UserDataHeaderIndicator = s.UserDataStartsWithHeader
		tpdu.StatusReportRequest = s.StatusReportRequest
		tpdu.MessageReference = s.MessageReference

		addrLen, addr, err := s.Address.PDU()
		if err != nil {
			return 0, nil, err
		}
		var addrBuf bytes.Buffer
		addrBuf.WriteByte(byte(addrLen))
		addrBuf.Write(addr)
		tpdu.DestinationAddress = addrBuf.Bytes()

		tpdu.ProtocolIdentifier = 0x00 // Short Message Type 0
		tpdu.DataCodingScheme = byte(s.Encoding)

		switch s.VPFormat {
		case ValidityPeriodFormats.Relative:
			tpdu.ValidityPeriod = []byte{s.VP.Octet()}
		case ValidityPeriodFormats.Absolute, ValidityPeriodFormats.Enhanced:
			return 0, nil, ErrNonRelative
		}

		userData, udl, err := encodeText(s.Text, s.Encoding)
		if err != nil {
			return 0, nil, err
		}
		tpdu.UserData = userData
		tpdu.UserDataLength = udl

		n, err := buf.Write(tpdu.Bytes())
		if err != nil {
			return 0, nil, err
		}
		return n, buf.Bytes(), nil
	case MessageTypes.StatusReport:
		var tpdu smsStatusReport
		tpdu.MessageTypeIndicator = byte(s.Type)
		tpdu.MoreMessagesToSend = s.MoreMessagesToSend
		tpdu.LoopPrevention = s.LoopPrevention
		tpdu.UserDataHeaderIndicator = s.UserDataStartsWithHeader
		tpdu.MessageReference = s.MessageReference

		addrLen, addr, err := s.Address.PDU()
		if err != nil {
			return 0, nil, err
		}
		var addrBuf bytes.Buffer
		addrBuf.WriteByte(byte(addrLen))
		addrBuf.Write(addr)
		tpdu.DestinationAddress = addrBuf.Bytes()

		tpdu.ServiceCentreTimestamp = s.ServiceCenterTime.PDU()
		tpdu.DischargeTimestamp = s.DischargeTime.PDU()
		tpdu.Status = byte(s.Status)

		if s.Text != "" {
			userData, udl, err := encodeText(s.Text, s.Encoding)
			if err != nil {
				return 0, nil, err
			}
			tpdu.DataCodingScheme = byte(s.Encoding)
			tpdu.UserData = userData
			tpdu.UserDataLength = udl
		}

		n, err := buf.Write(tpdu.Bytes())
		if err != nil {
			return 0, nil, err
		}
		return n, buf.Bytes(), nil
	default:
		return 0, nil, ErrUnknownMessageType
	}
}

// ReadFrom constructs a message from the supplied PDU octets. Returns the number of bytes read.
// Complies with 3GPP TS 23.040.
func (s *Message) ReadFrom(octets []byte) (n int, err error) { //nolint:funlen
	*s = Message{}
	buf := bytes.NewReader(octets)
	scLen, err := buf.ReadByte()
	n++
	if err != nil {
		return
	}
	if scLen > 16 {
		return 0, ErrIncorrectSize
	}
	addr := make([]byte, scLen)
	off, err := io.ReadFull(buf, addr)
	n += off
	if err != nil {
		return
	}
	if len(addr) > 0 {
		if err = s.ServiceCenterAddress.ReadFrom(addr); err != nil {
			return
		}
	}
	msgType, err := buf.ReadByte()
	n++
	if err != nil {
		return
	}
	n--
	if uerr := buf.UnreadByte(); uerr != nil {
		return n, uerr
	}
	s.Type = MessageType(msgType & 0x03)

	switch s.Type {
	case MessageTypes.Deliver:
		var tpdu smsDeliver
		off, err2 := tpdu.FromBytes(octets[1+int(scLen):])
		n += off
		if err2 != nil {
			return n, err2
		}
		s.MoreMessagesToSend = tpdu.MoreMessagesToSend
		s.LoopPrevention = tpdu.LoopPrevention
		s.ReplyPathExists = tpdu.ReplyPath
		s.UserDataStartsWithHeader = tpdu.UserDataHeaderIndicator
		s.StatusReportIndication = tpdu.StatusReportIndication
		if err = s.Address.ReadFrom(tpdu.OriginatingAddress[1:]); err != nil {
			return
		}
		s.Encoding = Encoding(tpdu.DataCodingScheme)
		s.ServiceCenterTime.ReadFrom(tpdu.ServiceCentreTimestamp)
		s.Text, err = decodeText(tpdu.UserData, tpdu.UserDataLength, s.Encoding, s.UserDataStartsWithHeader)
		if err != nil {
			return
		}
	case MessageTypes.Submit:
		var tpdu smsSubmit
		off, err2 := tpdu.FromBytes(octets[1+int(scLen):])
		n += off
		if err2 != nil {
			return n, err2
		}
		s.RejectDuplicates = tpdu.RejectDuplicates

		vpFormat := ValidityPeriodFormat(tpdu.ValidityPeriodFormat)
		switch vpFormat {
		case ValidityPeriodFormats.Absolute, ValidityPeriodFormats.Enhanced:
			return n, ErrNonRelative
		default:
			s.VPFormat = vpFormat
		}

		s.ReplyPathExists = tpdu.ReplyPath
		s.UserDataStartsWithHeader = tpdu.UserDataHeaderIndicator
		s.StatusReportRequest = tpdu.StatusReportRequest
		if err = s.Address.ReadFrom(tpdu.DestinationAddress[1:]); err != nil {
			return
		}
		s.Encoding = Encoding(tpdu.DataCodingScheme)

		if s.VPFormat != ValidityPeriodFormats.FieldNotPresent && len(tpdu.ValidityPeriod) > 0 {
			s.VP.ReadFrom(tpdu.ValidityPeriod[0])
		}

		s.Text, err = decodeText(tpdu.UserData, tpdu.UserDataLength, s.Encoding, s.UserDataStartsWithHeader)
		if err != nil {
			return
		}
	case MessageTypes.StatusReport:
		var tpdu smsStatusReport
		off, err2 := tpdu.FromBytes(octets[1+int(scLen):])
		n += off
		if err2 != nil {
			return n, err2
		}
		s.MoreMessagesToSend = tpdu.MoreMessagesToSend
		s.LoopPrevention = tpdu.LoopPrevention
		s.UserDataStartsWithHeader = tpdu.UserDataHeaderIndicator
		s.MessageReference = tpdu.MessageReference
		if err = s.Address.ReadFrom(tpdu.DestinationAddress[1:]); err != nil {
			return
		}
		s.ServiceCenterTime.ReadFrom(tpdu.ServiceCentreTimestamp)
		s.DischargeTime.ReadFrom(tpdu.DischargeTimestamp)
		s.Status = Status(tpdu.Status)

		if tpdu.Parameters&0x02 != 0 {
			s.Encoding = Encoding(tpdu.DataCodingScheme)
		}
		if tpdu.Parameters&0x04 != 0 && len(tpdu.UserData) > 0 {
			s.Text, err = decodeText(tpdu.UserData, tpdu.UserDataLength, s.Encoding, s.UserDataStartsWithHeader)
			if err != nil {
				return
			}
		}
	default:
		return n, ErrUnknownMessageType
	}

	return
}
