package wsserver

import "github.com/yndnr/pushmesh-go/internal/core/domain"

// TranslateOptions tunes Translate.
type TranslateOptions struct {
	// EchoData sends text and binary frames back to their sender.
	EchoData bool
}

// Action is what the connection does in response to one inbound frame.
type Action struct {
	// Refresh marks the connection as live.
	Refresh bool
	// Reply is written back to the peer when non-nil.
	Reply *domain.Frame
	// Teardown ends the connection after Reply is written.
	Teardown bool
}

// Translate maps an inbound frame to the connection's reaction. It has
// no side effects.
func Translate(f domain.Frame, opts TranslateOptions) Action {
	switch f.Kind {
	case domain.FramePing:
		return Action{
			Refresh: true,
			Reply:   &domain.Frame{Kind: domain.FramePong, Payload: f.Payload},
		}
	case domain.FramePong:
		return Action{Refresh: true}
	case domain.FrameText, domain.FrameBinary:
		a := Action{Refresh: true}
		if opts.EchoData {
			a.Reply = &domain.Frame{Kind: f.Kind, Payload: f.Payload}
		}
		return a
	case domain.FrameClose:
		return Action{
			Reply:    &domain.Frame{Kind: domain.FrameClose, Payload: f.Payload, CloseCode: f.CloseCode},
			Teardown: true,
		}
	default:
		return Action{}
	}
}
