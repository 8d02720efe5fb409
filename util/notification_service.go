// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

// NotificationService turns engine events into operator notifications.
// Delivery is log based; a pager or mail integration plugs in here.
type NotificationService struct {
	admins []string
}

func NewNotificationService(admins ...string) *NotificationService {
	return &NotificationService{admins: admins}
}

// NotifyHighRisk reports a decision whose risk crossed the alert ceiling.
func (n *NotificationService) NotifyHighRisk(ctx context.Context, correlationID, actorID, resourceID string, score float64) error {
	if correlationID == "" {
		return fmt.Errorf("high risk notification without correlation id")
	}
	logger.Warn("NOTIFICATION: High risk access decision",
		zap.String("correlationID", correlationID),
		zap.String("actorID", actorID),
		zap.String("resourceID", resourceID),
		zap.Float64("riskScore", score))
	return n.NotifyAdmins(ctx, fmt.Sprintf("risk %.2f for %s on %s (%s)", score, actorID, resourceID, correlationID))
}

func (n *NotificationService) NotifySessionChange(ctx context.Context, changeType, sessionID, actorID, reason string) error {
	switch changeType {
	case "started", "verified":
		logger.Info("NOTIFICATION: Session "+changeType,
			zap.String("sessionID", sessionID),
			zap.String("actorID", actorID))
	case "ended":
		logger.Info("NOTIFICATION: Session ended",
			zap.String("sessionID", sessionID),
			zap.String("actorID", actorID),
			zap.String("reason", reason))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyMatrixReloaded(ctx context.Context, fromVersion, toVersion string) error {
	logger.Info("NOTIFICATION: Permission matrix reloaded",
		zap.String("from", fromVersion),
		zap.String("to", toVersion))
	return nil
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins",
		zap.Strings("admins", n.admins),
		zap.String("message", message))
	return nil
}
