package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelAlarm = "alarm"
)

// Sender delivers task reminders over one of the user's configured channels.
type Sender interface {
	SendSMS(ctx context.Context, to, message string) error
	SendEmail(ctx context.Context, to, subject, body string) error
	SendAlarm(ctx context.Context, user *domain.User, task *domain.Task) error
}

// NotifierConfig controls the due-task sweep window.
type NotifierConfig struct {
	// Lookback bounds how far past-due a task may be and still get a
	// reminder, so restarts do not spam ancient tasks.
	Lookback time.Duration
	// Lookahead is how far into the future the sweep reaches.
	Lookahead time.Duration
}

// Notifier periodically sweeps for due, unnotified, uncompleted tasks and
// dispatches reminders on the owner's configured channels.
type Notifier struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	sender Sender
	logger *zap.Logger
	cron   *cron.Cron
	cfg    NotifierConfig
}

func NewNotifier(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	sender Sender,
	logger *zap.Logger,
	cfg NotifierConfig,
) *Notifier {
	if cfg.Lookback <= 0 {
		cfg.Lookback = time.Hour
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		tasks:  tasks,
		users:  users,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
	}

	_, _ = n.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := n.Sweep(ctx, time.Now()); err != nil {
			n.logger.Error("notification sweep failed", zap.Error(err))
		}
	})

	return n
}

func (n *Notifier) Start() {
	n.cron.Start()
	n.logger.Info("notification sweep started")
}

func (n *Notifier) Stop(ctx context.Context) {
	stopCtx := n.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	n.logger.Info("notification sweep stopped")
}

// Sweep runs one pass: tasks due within [now-Lookback, now+Lookahead] that
// are still pending and not yet notified.
func (n *Notifier) Sweep(ctx context.Context, now time.Time) error {
	tasks, err := n.tasks.ListDueUnnotified(ctx, now.Add(-n.cfg.Lookback), now.Add(n.cfg.Lookahead))
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}
	n.logger.Debug("tasks pending notification", zap.Int("count", len(tasks)))

	for i := range tasks {
		task := &tasks[i]
		if err := n.notify(ctx, task); err != nil {
			n.logger.Warn("task notification failed",
				zap.String("task_id", task.ID), zap.Error(err))
			continue
		}
		if err := n.tasks.MarkNotified(ctx, task.ID); err != nil {
			n.logger.Warn("failed to mark task notified",
				zap.String("task_id", task.ID), zap.Error(err))
		}
	}
	return nil
}

func (n *Notifier) notify(ctx context.Context, task *domain.Task) error {
	user, err := n.users.GetByID(ctx, task.UserID)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Task Reminder: %s is due", task.Title)
	if task.DueDate != nil {
		message = fmt.Sprintf("Task Reminder: %s is due at %s", task.Title, task.DueDate.Format(time.Kitchen))
	}

	for _, channel := range user.NotificationChannels {
		switch channel {
		case ChannelSMS:
			if user.MobileNumber == "" {
				continue
			}
			if err := n.sender.SendSMS(ctx, user.MobileNumber, message); err != nil {
				return err
			}
		case ChannelEmail:
			if user.Email == "" {
				continue
			}
			body := fmt.Sprintf("Your task %q is due.", task.Title)
			if err := n.sender.SendEmail(ctx, user.Email, message, body); err != nil {
				return err
			}
		case ChannelAlarm:
			if err := n.sender.SendAlarm(ctx, user, task); err != nil {
				return err
			}
		}
	}
	return nil
}

// LogSender is the development delivery backend: it only logs.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendSMS(_ context.Context, to, message string) error {
	s.logger.Info("sms notification", zap.String("to", to), zap.String("message", message))
	return nil
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info("email notification", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}

func (s *LogSender) SendAlarm(_ context.Context, user *domain.User, task *domain.Task) error {
	s.logger.Info("alarm notification", zap.String("user_id", user.ID), zap.String("task_id", task.ID))
	return nil
}

var _ Sender = (*LogSender)(nil)
