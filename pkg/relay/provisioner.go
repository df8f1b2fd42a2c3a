package relay

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"topicrelay/pkg/lock"
	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
	"topicrelay/storage"
)

// Telegram rejects forum topic names longer than this.
const maxTopicName = 128

// Provisioner creates a user's thread on first contact and stores its id.
//
// Concurrent first messages of one user share a single creation through a
// singleflight group keyed by user id. Instances that share a database also
// share locker, when set. The store only assigns topic_id while it is NULL,
// which keeps the record correct even against an instance outside the lock.
type Provisioner struct {
	users     storage.IUserStorage
	transport Transport
	locker    lock.Locker
	flight    singleflight.Group
	channelID int64
	timeout   time.Duration
	log       logger.ILogger
}

// NewProvisioner builds a provisioner. locker may be nil for a single instance.
func NewProvisioner(users storage.IUserStorage, transport Transport, locker lock.Locker, channelID int64, timeout time.Duration, log logger.ILogger) *Provisioner {
	return &Provisioner{
		users:     users,
		transport: transport,
		locker:    locker,
		channelID: channelID,
		timeout:   timeout,
		log:       log,
	}
}

// TopicName is "<first name | username | id> [ID: <id>]", cut to fit the
// platform limit.
func TopicName(u *models.User) string {
	suffix := " [ID: " + strconv.FormatInt(u.UserID, 10) + "]"
	name := u.DisplayName()

	limit := maxTopicName - utf8.RuneCountInString(suffix)
	if utf8.RuneCountInString(name) > limit {
		name = string([]rune(name)[:limit])
	}
	return name + suffix
}

// EnsureThreadForUser returns the user's thread id, creating the thread and
// the user record when missing. Failures are logged and reported as ok=false;
// the record stays ABSENT so the next message retries.
func (p *Provisioner) EnsureThreadForUser(ctx context.Context, sender models.User) (int, bool) {
	threadID, err := p.Ensure(ctx, sender)
	return threadID, err == nil
}

// Ensure is EnsureThreadForUser with the failure kept. A rejected CreateThread
// comes back as the *TransportError, so callers can tell a lost channel apart.
// The error is already logged.
func (p *Provisioner) Ensure(ctx context.Context, sender models.User) (int, error) {
	userID := sender.UserID

	user, err := p.users.Get(ctx, userID)
	if err != nil {
		p.log.Error("failed to read user before provisioning", logger.Int64("user_id", userID), logger.Error(err))
		return 0, err
	}
	if user.HasTopic() {
		return *user.TopicID, nil
	}

	key := strconv.FormatInt(userID, 10)
	// The shared call must outlive a caller that gives up early.
	ch := p.flight.DoChan(key, func() (interface{}, error) {
		return p.provision(context.WithoutCancel(ctx), sender)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	case <-ctx.Done():
		p.log.Warning("gave up waiting for topic", logger.Int64("user_id", userID), logger.Error(ctx.Err()))
		return 0, ctx.Err()
	}
}

func (p *Provisioner) provision(ctx context.Context, sender models.User) (int, error) {
	userID := sender.UserID

	if p.locker != nil {
		unlock, err := p.locker.Lock(ctx, "topic:"+strconv.FormatInt(userID, 10))
		if err != nil {
			p.log.Error("failed to lock user for provisioning", logger.Int64("user_id", userID), logger.Error(err))
			return 0, err
		}
		defer unlock()
	}

	user, err := p.users.Get(ctx, userID)
	if err != nil {
		p.log.Error("failed to re-read user before provisioning", logger.Int64("user_id", userID), logger.Error(err))
		return 0, err
	}
	if user == nil {
		user, err = p.users.Create(ctx, &sender)
		if err != nil {
			p.log.Error("failed to create user on first contact", logger.Int64("user_id", userID), logger.Error(err))
			return 0, err
		}
	}
	if user.HasTopic() {
		return *user.TopicID, nil
	}

	topic, err := p.createTopic(ctx, user)
	if err != nil {
		p.log.Error("topic creation failed",
			logger.Int64("user_id", userID),
			logger.String("state", models.TopicAbsent.String()),
			logger.String("cause", CauseOf(err).String()),
			logger.Error(err),
		)
		return 0, err
	}

	assigned, err := p.users.SetTopic(ctx, userID, topic.ThreadID)
	if err != nil {
		p.log.Error("failed to persist topic id",
			logger.Int64("user_id", userID),
			logger.Int("thread_id", topic.ThreadID),
			logger.String("state", models.TopicAbsent.String()),
			logger.Error(err),
		)
		return 0, err
	}
	if !assigned {
		stored, err := p.users.Get(ctx, userID)
		if err == nil && !stored.HasTopic() {
			err = fmt.Errorf("topic %d for user %d was not stored", topic.ThreadID, userID)
		}
		if err != nil {
			p.log.Error("topic id was not stored",
				logger.Int64("user_id", userID),
				logger.Int("thread_id", topic.ThreadID),
				logger.Error(err),
			)
			return 0, err
		}
		p.log.Warning("user already had a topic, created thread is orphaned",
			logger.Int64("user_id", userID),
			logger.Int("thread_id", *stored.TopicID),
			logger.Int("orphan_thread_id", topic.ThreadID),
		)
		return *stored.TopicID, nil
	}

	p.log.Info("topic created",
		logger.Int64("user_id", userID),
		logger.Int("thread_id", topic.ThreadID),
		logger.String("name", topic.Name),
		logger.String("state", models.TopicActive.String()),
	)
	return topic.ThreadID, nil
}

func (p *Provisioner) createTopic(ctx context.Context, user *models.User) (*models.Topic, error) {
	topic := &models.Topic{UserID: user.UserID, Name: TopicName(user)}

	p.log.Debug("creating topic",
		logger.Int64("user_id", user.UserID),
		logger.String("name", topic.Name),
		logger.String("state", models.TopicCreating.String()),
	)

	callCtx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	threadID, err := p.transport.CreateThread(callCtx, p.channelID, topic.Name)
	if err != nil {
		return nil, err
	}
	if threadID <= 0 {
		return nil, fmt.Errorf("transport returned invalid thread id %d", threadID)
	}
	topic.ThreadID = threadID
	return topic, nil
}
