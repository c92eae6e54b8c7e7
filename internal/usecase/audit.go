package usecase

import (
	"context"

	"bookmarket/internal/domain/model"
	"bookmarket/internal/events"
	repo "bookmarket/internal/repository"

	"go.uber.org/zap"
)

// AuditRecorder は管理者操作の記録。
// 業務トランザクションのcommit後に呼ぶ。記録に失敗しても
// 業務処理は巻き戻さず、ログに残すだけにする。
type AuditRecorder struct {
	actions   repo.AdminActionRepository
	publisher events.Publisher
	log       *zap.Logger
}

func NewAuditRecorder(actions repo.AdminActionRepository, publisher events.Publisher, log *zap.Logger) *AuditRecorder {
	return &AuditRecorder{
		actions:   actions,
		publisher: publisher,
		log:       log,
	}
}

func (a *AuditRecorder) Record(ctx context.Context, action model.AdminAction) {
	if err := a.actions.Create(ctx, action); err != nil {
		a.log.Error("failed to write admin action",
			zap.String("action_type", string(action.ActionType)),
			zap.Int64("admin_id", action.AdminID),
			zap.Error(err),
		)
	}

	if err := a.publisher.PublishAdminAction(ctx, action); err != nil {
		a.log.Warn("failed to publish admin action event",
			zap.String("action_type", string(action.ActionType)),
			zap.Error(err),
		)
	}
}
