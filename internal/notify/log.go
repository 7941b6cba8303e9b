package notify

import (
	"context"

	"causeboard/internal/service"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes change events to the structured log. It stands in
// for an external change-log consumer; swapping in a queue producer only
// touches this package.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) CauseChanged(_ context.Context, event service.ChangeEvent) error {
	n.logger.WithFields(logrus.Fields{
		"type":        event.Type,
		"cause_id":    event.CauseID,
		"category_id": event.CategoryID,
		"user_id":     event.UserID,
		"occurred_at": event.OccurredAt,
	}).Info("cause changed")

	return nil
}
