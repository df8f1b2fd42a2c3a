package relay

import (
	"context"

	"topicrelay/pkg/logger"
)

// Fallback decides what happens after a failed dispatch. It redirects at most
// once and never changes the outcome: the relay still reports failure.
type Fallback struct {
	dispatcher *Dispatcher
	notice     string
	log        logger.ILogger
}

func NewFallback(dispatcher *Dispatcher, notice string, log logger.ILogger) *Fallback {
	return &Fallback{dispatcher: dispatcher, notice: notice, log: log}
}

// Handle reacts to err from a dispatch in direction dir. userID is the end
// user on either side; threadID is the team thread involved, if any.
// It reports whether a fallback dispatch was attempted.
func (f *Fallback) Handle(ctx context.Context, dir Direction, userID int64, threadID int, err error) bool {
	cause := CauseOf(err)
	fields := []logger.Field{
		logger.String("direction", dir.String()),
		logger.Int64("user_id", userID),
		logger.Int("thread_id", threadID),
		logger.String("cause", cause.String()),
		logger.Error(err),
	}

	switch {
	case dir == FromUser && cause == CauseChannelUnreachable:
		f.log.Error("team channel unreachable, notifying user directly", fields...)
		if ferr := f.dispatcher.SendNotice(ctx, Target{ChatID: userID}, f.notice); ferr != nil {
			f.log.Warning("fallback notice failed",
				logger.Int64("user_id", userID),
				logger.String("cause", CauseOf(ferr).String()),
				logger.Error(ferr),
			)
		}
		return true
	case dir == FromTeamThread && cause == CauseRecipientUnreachable:
		f.log.Warning("user is unreachable, reply dropped", fields...)
	default:
		f.log.Error("delivery failed, message dropped", fields...)
	}
	return false
}
