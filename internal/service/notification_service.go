package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueCreated, n.handleIssueCreated)
	n.dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleIssueStatusChanged)
	n.dispatcher.Subscribe(events.EventIssueAssigned, n.handleIssueAssigned)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleIssueCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("IssueCreated", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleIssueStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("IssueStatusChanged", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleIssueAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("IssueAssigned", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}
