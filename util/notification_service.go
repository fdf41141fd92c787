// api/util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyPolicyChange(ctx context.Context, changeType string, policy model.AccessPolicy) error {
	// In a real implementation, you might send this to a message queue or external notification service
	switch changeType {
	case "created", "updated":
		logger.Info("NOTIFICATION: Access policy stored",
			zap.String("dataset", policy.DatasetName),
			zap.String("owner", policy.OwnerEmail))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}
	return nil
}

func (n *NotificationService) NotifyTokenRevoked(ctx context.Context, tokenID string) error {
	logger.Info("NOTIFICATION: Token revoked", zap.String("tokenID", tokenID))
	return nil
}

func (n *NotificationService) NotifyOwner(ctx context.Context, ownerEmail, message string) error {
	logger.Info("Notifying datasite owner",
		zap.String("owner", ownerEmail),
		zap.String("message", message))
	return nil
}
