package relay

import (
	"context"
	"time"

	"topicrelay/pkg/models"
)

// Dispatcher maps a content kind to its transport primitive.
type Dispatcher struct {
	transport   Transport
	placeholder string
	timeout     time.Duration
}

func NewDispatcher(transport Transport, placeholder string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		transport:   transport,
		placeholder: placeholder,
		timeout:     timeout,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, to Target, env *models.Envelope) error {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	opts := SendOptions{Entities: env.Entities, Controls: env.Controls}

	switch env.Kind {
	case models.KindText:
		return d.transport.SendText(ctx, to, env.Text, opts)
	case models.KindPhoto,
		models.KindVideo,
		models.KindDocument,
		models.KindAudio,
		models.KindVoice,
		models.KindVideoNote:
		return d.transport.SendMedia(ctx, to, env.Kind, env.FileID, env.Caption, opts)
	case models.KindSticker:
		return d.transport.SendSticker(ctx, to, env.FileID, SendOptions{Controls: env.Controls})
	default:
		text := env.Body()
		if text == "" {
			text = d.placeholder
		}
		return d.transport.SendText(ctx, to, text, opts)
	}
}

// SendNotice sends plain text outside of any envelope.
func (d *Dispatcher) SendNotice(ctx context.Context, to Target, text string) error {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	return d.transport.SendText(ctx, to, text, SendOptions{})
}
