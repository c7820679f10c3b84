package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	pkgerrors "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/errors"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// ═══════════════════════════════════════════════════════════
// 两种批量执行策略
//   runBestEffort：逐项执行，失败记录后继续（宣布晋级）
//   runAtomic：单事务执行，任一失败整体回滚（提交评分）
// ═══════════════════════════════════════════════════════════

// runBestEffort 对每个 id 执行 fn，返回成功的 id 与失败明细
// ctx 取消后剩余条目全部记为失败，不再执行
func runBestEffort(
	ctx context.Context,
	logger *zap.Logger,
	m *metrics.Metrics,
	stage string,
	ids []string,
	fn func(ctx context.Context, id string) error,
) (succeeded []string, failures []dto.ItemFailure) {
	succeeded = make([]string, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			failures = append(failures, dto.ItemFailure{ID: id, Stage: stage, Reason: err.Error()})
			m.BestEffortFailure(stage)
			continue
		}
		if err := fn(ctx, id); err != nil {
			logger.Warn("批处理条目失败，已跳过",
				zap.String("stage", stage),
				zap.String("id", id),
				zap.Error(err),
			)
			failures = append(failures, dto.ItemFailure{ID: id, Stage: stage, Reason: err.Error()})
			m.BestEffortFailure(stage)
			continue
		}
		succeeded = append(succeeded, id)
	}
	return succeeded, failures
}

// runAtomic 在单个事务内执行 fn
func runAtomic(ctx context.Context, repo *repository.Repository, logger *zap.Logger, op string, fn func(txRepo *repository.Repository) error) error {
	err := repo.Transaction(ctx, fn)
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindUnexpected {
			logger.Error("事务执行失败，已回滚", zap.String("op", op), zap.Error(err))
		} else {
			logger.Info("事务因业务校验回滚", zap.String("op", op), zap.Error(err))
		}
	}
	return err
}

// traced 为一次业务操作开启 span，非预期错误标记为 span 错误状态
func traced[T any](ctx context.Context, tracer trace.Tracer, op, roundID string, fn func(ctx context.Context) (T, error)) (result T, err error) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("operation", op),
		attribute.String("round_id", roundID),
	))
	defer span.End()

	result, err = fn(ctx)
	if err != nil {
		kind := pkgerrors.KindOf(err)
		span.SetAttributes(attribute.String("error.kind", kind.String()))
		if kind == pkgerrors.KindUnexpected {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("%s failed", op))
		}
	}
	return result, err
}
