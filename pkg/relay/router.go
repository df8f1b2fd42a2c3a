package relay

import (
	"context"
	"fmt"
	"time"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
)

type Direction int

const (
	FromUser Direction = iota + 1
	FromTeamThread
)

func (d Direction) String() string {
	switch d {
	case FromUser:
		return "from_user"
	case FromTeamThread:
		return "from_team_thread"
	default:
		return "none"
	}
}

// Classify tells a user's private chat from a thread of the team channel.
// Messages from anywhere else are not relayed.
func Classify(origin models.Origin) (Direction, bool) {
	switch origin {
	case models.OriginPrivateChat:
		return FromUser, true
	case models.OriginTeamChannel:
		return FromTeamThread, true
	default:
		return 0, false
	}
}

type Settings struct {
	UseTeamChannel  bool
	TeamChannelID   int64
	BotID           int64
	CallTimeout     time.Duration
	FallbackNotice  string
	UnsupportedText string
}

// Router relays messages between users and their threads in the team channel.
type Router struct {
	settings    Settings
	directory   *Directory
	provisioner *Provisioner
	dispatcher  *Dispatcher
	fallback    *Fallback
	transport   Transport
	log         logger.ILogger
}

func NewRouter(settings Settings, directory *Directory, provisioner *Provisioner, transport Transport, log logger.ILogger) *Router {
	dispatcher := NewDispatcher(transport, settings.UnsupportedText, settings.CallTimeout)
	return &Router{
		settings:    settings,
		directory:   directory,
		provisioner: provisioner,
		dispatcher:  dispatcher,
		fallback:    NewFallback(dispatcher, settings.FallbackNotice, log),
		transport:   transport,
		log:         log,
	}
}

// Relay delivers env to the other side and reports whether it arrived.
// Every failure is logged here; none is returned to the caller.
func (r *Router) Relay(ctx context.Context, env *models.Envelope) bool {
	if r.settings.BotID != 0 && env.Sender.UserID == r.settings.BotID {
		r.log.Debug("own message skipped", logger.Int64("chat_id", env.ChatID))
		return false
	}

	dir, ok := Classify(env.Origin)
	if !ok {
		r.log.Debug("message outside of relay scope", logger.Int64("chat_id", env.ChatID))
		return false
	}

	switch dir {
	case FromUser:
		return r.relayFromUser(ctx, env)
	default:
		return r.relayFromTeam(ctx, env)
	}
}

func (r *Router) relayFromUser(ctx context.Context, env *models.Envelope) bool {
	userID := env.Sender.UserID

	if !r.settings.UseTeamChannel {
		if err := r.dispatcher.Dispatch(ctx, Target{ChatID: env.ChatID}, env); err != nil {
			r.log.Error("failed to echo message to user",
				logger.Int64("user_id", userID),
				logger.String("kind", string(env.Kind)),
				logger.String("cause", CauseOf(err).String()),
				logger.Error(err),
			)
			return false
		}
		return true
	}

	threadID, err := r.threadFor(ctx, env.Sender)
	if err != nil {
		if CauseOf(err) == CauseChannelUnreachable {
			r.fallback.Handle(ctx, FromUser, userID, 0, err)
			return false
		}
		r.log.Error("no topic to relay into",
			logger.Int64("user_id", userID),
			logger.Int64("channel_id", r.settings.TeamChannelID),
			logger.Error(err),
		)
		return false
	}

	target := Target{ChatID: r.settings.TeamChannelID, ThreadID: threadID}
	if err := r.dispatcher.Dispatch(ctx, target, env); err != nil {
		r.fallback.Handle(ctx, FromUser, userID, threadID, err)
		return false
	}

	r.log.Debug("relayed to topic",
		logger.Int64("user_id", userID),
		logger.Int("thread_id", threadID),
		logger.String("kind", string(env.Kind)),
	)
	return true
}

func (r *Router) relayFromTeam(ctx context.Context, env *models.Envelope) bool {
	if !r.settings.UseTeamChannel {
		return false
	}

	userID, found, err := r.directory.UserForThread(ctx, env.ThreadID)
	if err != nil {
		r.log.Error("failed to resolve user for thread", logger.Int("thread_id", env.ThreadID), logger.Error(err))
		return false
	}
	if !found {
		r.log.Warning("thread has no user",
			logger.Int("thread_id", env.ThreadID),
			logger.Error(ErrResolution),
		)
		return false
	}

	if err := r.dispatcher.Dispatch(ctx, Target{ChatID: userID}, env); err != nil {
		r.fallback.Handle(ctx, FromTeamThread, userID, env.ThreadID, err)
		return false
	}

	r.log.Debug("relayed to user",
		logger.Int64("user_id", userID),
		logger.Int("thread_id", env.ThreadID),
		logger.String("kind", string(env.Kind)),
	)
	return true
}

// Notify posts a bot-originated text into the user's thread, creating the
// thread if needed. While the team channel is disabled the text goes to the
// user's own chat instead. A failure never falls back.
func (r *Router) Notify(ctx context.Context, user models.User, text string) bool {
	if !r.settings.UseTeamChannel {
		if err := r.dispatcher.SendNotice(ctx, Target{ChatID: user.UserID}, text); err != nil {
			r.log.Error("failed to send notification to user",
				logger.Int64("user_id", user.UserID),
				logger.String("cause", CauseOf(err).String()),
				logger.Error(err),
			)
			return false
		}
		return true
	}

	threadID, err := r.threadFor(ctx, user)
	if err != nil {
		r.log.Error("no topic for notification", logger.Int64("user_id", user.UserID), logger.Error(err))
		return false
	}

	target := Target{ChatID: r.settings.TeamChannelID, ThreadID: threadID}
	if err := r.dispatcher.SendNotice(ctx, target, text); err != nil {
		r.log.Error("failed to post notification",
			logger.Int64("user_id", user.UserID),
			logger.Int("thread_id", threadID),
			logger.String("cause", CauseOf(err).String()),
			logger.Error(err),
		)
		return false
	}
	return true
}

// threadFor resolves the user's thread. A channel the bot cannot reach,
// found by the liveness check or by a rejected CreateThread, comes back as a
// *TransportError with CauseChannelUnreachable; anything else wraps
// ErrResolution.
func (r *Router) threadFor(ctx context.Context, user models.User) (int, error) {
	aliveCtx, cancel := withTimeout(ctx, r.settings.CallTimeout)
	alive := r.transport.ChannelAlive(aliveCtx, r.settings.TeamChannelID)
	cancel()
	if !alive {
		return 0, &TransportError{Cause: CauseChannelUnreachable, Err: ErrConfiguration}
	}

	threadID, err := r.provisioner.Ensure(ctx, user)
	if err != nil {
		if CauseOf(err) == CauseChannelUnreachable {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	return threadID, nil
}
