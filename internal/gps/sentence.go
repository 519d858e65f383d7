package gps

import (
	"strings"
	"unicode"

	nmea "github.com/adrianmo/go-nmea"
)

// RejectReason says why a raw line did not become a sentence. Serial links
// routinely produce truncated or garbled lines, especially at power-on, so
// rejection is a normal outcome and never stops the read loop.
type RejectReason int

const (
	RejectNone RejectReason = iota
	// RejectEmpty: nothing left after trimming.
	RejectEmpty
	// RejectNoStart: the line does not begin with '$'.
	RejectNoStart
	// RejectBadSentence: checksum, field grammar, or talker rejected by
	// the NMEA parser.
	RejectBadSentence
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "ok"
	case RejectEmpty:
		return "empty line"
	case RejectNoStart:
		return "no sentence start"
	case RejectBadSentence:
		return "bad sentence"
	default:
		return "unknown"
	}
}

// DecodeLine turns one raw serial line into a typed NMEA sentence.
// Bytes outside ASCII are substituted with '?' rather than failing the
// whole line; a garbled byte inside the sentence body then fails the
// checksum, which is the right outcome anyway.
func DecodeLine(raw []byte) (nmea.Sentence, RejectReason) {
	buf := make([]byte, len(raw))
	for i, b := range raw {
		if b > unicode.MaxASCII {
			buf[i] = '?'
		} else {
			buf[i] = b
		}
	}
	line := strings.TrimSpace(string(buf))
	if line == "" {
		return nil, RejectEmpty
	}
	if !strings.HasPrefix(line, "$") {
		return nil, RejectNoStart
	}
	sentence, err := nmea.Parse(line)
	if err != nil {
		return nil, RejectBadSentence
	}
	return sentence, RejectNone
}
