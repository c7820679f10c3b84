package service

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// SubmitScores
// ═══════════════════════════════════════════════════════════

// scoreWrite 校验通过的单条评分
type scoreWrite struct {
	participantID *string
	teamID        *string
	update        repository.ScoreUpdate
}

func (w scoreWrite) subjectID() string {
	if w.teamID != nil {
		return *w.teamID
	}
	return *w.participantID
}

func (s *judgingService) SubmitScores(ctx context.Context, roundID string, req *dto.SubmitScoresRequest, caller dto.Caller) (*dto.SubmitScoresResponse, error) {
	return traced(ctx, s.tracer, "SubmitScores", roundID, func(ctx context.Context) (*dto.SubmitScoresResponse, error) {
		round, err := s.loadRound(ctx, roundID)
		if err != nil {
			return nil, err
		}

		judgeAssignment, err := s.repo.Assignment.FindByRoundAndUser(ctx, round.RoundID, caller.UserID, model.AssignmentRoleJudge)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrNotAssigned
			}
			s.logger.Error("查询评委分配失败", zap.Error(err))
			return nil, err
		}

		// 先整体校验，再进入事务
		writes := make([]scoreWrite, 0, len(req.Scores))
		for i := range req.Scores {
			w, err := buildScoreWrite(i, &req.Scores[i])
			if err != nil {
				return nil, err
			}
			writes = append(writes, w)
		}

		scored := make([]dto.ScoredEntry, 0, len(writes))
		err = runAtomic(ctx, s.repo, s.logger, "SubmitScores", func(txRepo *repository.Repository) error {
			scored = scored[:0]
			for _, w := range writes {
				var target *model.Assignment
				var err error
				if w.teamID != nil {
					target, err = txRepo.Assignment.FindByRoundAndTeam(ctx, round.RoundID, *w.teamID, model.AssignmentRoleParticipant)
				} else {
					target, err = txRepo.Assignment.FindByRoundAndUser(ctx, round.RoundID, *w.participantID, model.AssignmentRoleParticipant)
				}
				if err != nil {
					if isNotFound(err) {
						return ErrScoreTargetNotFound.WithDetails(w.subjectID())
					}
					return fmt.Errorf("查询评分对象失败: %w", err)
				}

				if err := txRepo.Assignment.ApplyScore(ctx, target.AssignmentID, w.update); err != nil {
					if isNotFound(err) {
						return ErrScoreTargetNotFound.WithDetails(w.subjectID())
					}
					return fmt.Errorf("写入评分失败: %w", err)
				}
				scored = append(scored, dto.ScoredEntry{
					AssignmentID:  target.AssignmentID,
					ParticipantID: w.participantID,
					TeamID:        w.teamID,
					Score:         w.update.Score,
				})
			}

			if err := txRepo.Assignment.UpdateStatus(ctx, judgeAssignment.AssignmentID, model.AssignmentStatusCompleted); err != nil {
				return fmt.Errorf("更新评委分配状态失败: %w", err)
			}

			// 轮次级评委指派同步标记完成（不存在时忽略）
			ja, err := txRepo.JudgeAssignment.Find(ctx, round.EventID, &round.RoundID, caller.UserID)
			switch {
			case err == nil:
				if ja.Status != model.JudgeAssignmentStatusCompleted {
					if err := txRepo.JudgeAssignment.UpdateStatus(ctx, ja.JudgeAssignmentID, model.JudgeAssignmentStatusCompleted); err != nil {
						return fmt.Errorf("更新评委指派状态失败: %w", err)
					}
				}
			case !isNotFound(err):
				return fmt.Errorf("查询评委指派失败: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.metrics.ScoresSubmitted(len(scored))
		s.leaderboard.Invalidate(ctx, round.RoundID)
		s.logger.Info("评分已提交",
			zap.String("round_id", round.RoundID),
			zap.String("judge_id", caller.UserID),
			zap.Int("entries", len(scored)),
		)

		return &dto.SubmitScoresResponse{
			RoundID:     round.RoundID,
			JudgeID:     caller.UserID,
			Scored:      scored,
			JudgeStatus: model.AssignmentStatusCompleted.String(),
		}, nil
	})
}

// buildScoreWrite 校验单条评分并计算总分：已提供分项的算术平均
func buildScoreWrite(index int, e *dto.ScoreEntry) (scoreWrite, error) {
	invalid := func(reason string) error {
		return ErrInvalidScoreEntry.WithDetails(map[string]any{"index": index, "reason": reason})
	}

	if (e.ParticipantID == nil) == (e.TeamID == nil) {
		return scoreWrite{}, invalid("participant_id 与 team_id 必须且只能填一个")
	}

	var sum float64
	var n int
	for _, c := range []*float64{e.TechnicalScore, e.PresentationScore, e.CreativityScore, e.ImplementationScore} {
		if c == nil {
			continue
		}
		if *c < 0 || *c > 100 {
			return scoreWrite{}, invalid("分项分数必须在 0-100 之间")
		}
		sum += *c
		n++
	}
	if n == 0 {
		return scoreWrite{}, invalid("至少需要一个分项分数")
	}

	return scoreWrite{
		participantID: e.ParticipantID,
		teamID:        e.TeamID,
		update: repository.ScoreUpdate{
			Score:               roundScore(sum / float64(n)),
			TechnicalScore:      roundScorePtr(e.TechnicalScore),
			PresentationScore:   roundScorePtr(e.PresentationScore),
			CreativityScore:     roundScorePtr(e.CreativityScore),
			ImplementationScore: roundScorePtr(e.ImplementationScore),
			JudgeComments:       e.JudgeComments,
		},
	}, nil
}

// roundScore 保留两位小数，与 NUMERIC(6,2) 列一致，各存储排名相同
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundScorePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := roundScore(*v)
	return &r
}

// ═══════════════════════════════════════════════════════════
// DeclareWinners
// ═══════════════════════════════════════════════════════════

func (s *judgingService) DeclareWinners(ctx context.Context, roundID string, req *dto.DeclareWinnersRequest, caller dto.Caller) (*dto.DeclareWinnersResponse, error) {
	return traced(ctx, s.tracer, "DeclareWinners", roundID, func(ctx context.Context) (*dto.DeclareWinnersResponse, error) {
		round, err := s.loadRound(ctx, roundID)
		if err != nil {
			return nil, err
		}
		event, err := s.loadEvent(ctx, round.EventID)
		if err != nil {
			return nil, err
		}
		if err := authorizeEventManager(event, caller); err != nil {
			return nil, err
		}

		winnerIDs := dedupe(req.WinnerIDs)
		if len(winnerIDs) == 0 {
			return nil, ErrEmptyWinners
		}

		// 下一轮次在任何状态变更之前校验
		var nextRound *model.Round
		if req.NextRoundID != nil {
			if *req.NextRoundID == round.RoundID {
				return nil, ErrSameRoundAdvance
			}
			nextRound, err = s.repo.Round.GetByID(ctx, *req.NextRoundID)
			if err != nil {
				if isNotFound(err) {
					return nil, ErrNextRoundNotFound
				}
				s.logger.Error("查询下一轮次失败", zap.Error(err))
				return nil, err
			}
			if nextRound.EventID != round.EventID {
				return nil, ErrCrossEventRound
			}
		}

		role := model.AssignmentRoleParticipant
		participants, err := s.repo.Assignment.ListByRound(ctx, round.RoundID, &role)
		if err != nil {
			s.logger.Error("查询轮次选手失败", zap.Error(err))
			return nil, err
		}
		bySubject := make(map[string]*model.Assignment, len(participants))
		for i := range participants {
			bySubject[participants[i].SubjectID()] = &participants[i]
		}

		// ── 晋级 ──
		advanced, failures := runBestEffort(ctx, s.logger, s.metrics, "advance", winnerIDs, func(ctx context.Context, id string) error {
			a, ok := bySubject[id]
			if !ok {
				return ErrWinnerNotInRound
			}
			if err := s.repo.Assignment.UpdateStatus(ctx, a.AssignmentID, model.AssignmentStatusAdvanced); err != nil {
				return fmt.Errorf("更新晋级状态失败: %w", err)
			}
			a.Status = model.AssignmentStatusAdvanced
			return nil
		})

		// ── 淘汰：不在名单内且尚未晋级的选手 ──
		winnerSet := make(map[string]struct{}, len(winnerIDs))
		for _, id := range winnerIDs {
			winnerSet[id] = struct{}{}
		}
		var losers []string
		for i := range participants {
			id := participants[i].SubjectID()
			if _, ok := winnerSet[id]; ok {
				continue
			}
			if participants[i].Status == model.AssignmentStatusAdvanced {
				continue
			}
			losers = append(losers, id)
		}
		eliminated, elimFailures := runBestEffort(ctx, s.logger, s.metrics, "eliminate", losers, func(ctx context.Context, id string) error {
			if err := s.repo.Assignment.UpdateStatus(ctx, bySubject[id].AssignmentID, model.AssignmentStatusEliminated); err != nil {
				return fmt.Errorf("更新淘汰状态失败: %w", err)
			}
			return nil
		})
		failures = append(failures, elimFailures...)

		// ── 报名下一轮：复用创建路径，容量限制生效，软冲突自动放行 ──
		var registered []string
		if nextRound != nil {
			var regFailures []dto.ItemFailure
			registered, regFailures = runBestEffort(ctx, s.logger, s.metrics, "register", advanced, func(ctx context.Context, id string) error {
				a := bySubject[id]
				_, _, err := s.createAssignment(ctx, s.repo, nextRound, assignmentSpec{
					UserID: a.UserID,
					TeamID: a.TeamID,
					Role:   model.AssignmentRoleParticipant,
					Status: model.AssignmentStatusAssigned,
				}, true)
				if err != nil && !isAlreadyRegistered(err) {
					return err
				}
				return nil
			})
			failures = append(failures, regFailures...)
		}

		s.metrics.AdvancementOutcome("advanced", len(advanced))
		s.metrics.AdvancementOutcome("eliminated", len(eliminated))
		s.metrics.AdvancementOutcome("registered", len(registered))

		invalidate := []string{round.RoundID}
		if nextRound != nil {
			invalidate = append(invalidate, nextRound.RoundID)
		}
		s.leaderboard.Invalidate(ctx, invalidate...)

		s.logger.Info("晋级名单已宣布",
			zap.String("round_id", round.RoundID),
			zap.Int("advanced", len(advanced)),
			zap.Int("eliminated", len(eliminated)),
			zap.Int("registered", len(registered)),
			zap.Int("failures", len(failures)),
		)

		resp := &dto.DeclareWinnersResponse{
			RoundID:    round.RoundID,
			Winners:    advanced,
			Eliminated: eliminated,
			Advanced:   nextRound != nil && len(registered) > 0,
			Registered: registered,
			Failures:   failures,
		}
		if nextRound != nil {
			resp.NextRoundID = strPtr(nextRound.RoundID)
		}
		return resp, nil
	})
}

// dedupe 去重并保持原顺序，忽略空串
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
