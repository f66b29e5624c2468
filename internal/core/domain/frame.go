package domain

// FrameKind enumerates the WebSocket frames the relay reacts to.
type FrameKind uint8

const (
	FrameUnknown FrameKind = iota
	FramePing
	FramePong
	FrameText
	FrameBinary
	FrameClose
)

// String returns the lowercase frame kind name used in logs and metrics.
func (k FrameKind) String() string {
	switch k {
	case FramePing:
		return "ping"
	case FramePong:
		return "pong"
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FrameClose:
		return "close"
	default:
		return "unknown"
	}
}

// IsData reports whether the kind carries application data.
func (k FrameKind) IsData() bool {
	return k == FrameText || k == FrameBinary
}

// Frame is one inbound or outbound WebSocket frame.
type Frame struct {
	Kind    FrameKind
	Payload []byte

	// CloseCode is the RFC 6455 status code; only meaningful for FrameClose.
	CloseCode int
}

// TextFrame builds a text frame carrying s.
func TextFrame(s string) Frame {
	return Frame{Kind: FrameText, Payload: []byte(s)}
}

// CloseFrame builds a close frame with the given code and reason.
func CloseFrame(code int, reason string) Frame {
	return Frame{Kind: FrameClose, Payload: []byte(reason), CloseCode: code}
}
