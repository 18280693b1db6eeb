package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/totegamma/rentchain/internal/usecase"
)

// AuditService runs the ledger invariant audit on a cron schedule.
type AuditService struct {
	audit *usecase.AuditUsecase
	cron  *cron.Cron
}

func NewAuditService(audit *usecase.AuditUsecase) *AuditService {
	return &AuditService{
		audit: audit,
		cron:  cron.New(),
	}
}

// Start schedules the audit. schedule is a standard 5 field cron spec or a descriptor like "@hourly".
func (s *AuditService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("audit scheduled", slog.String("schedule", schedule), slog.String("module", "audit"))
	return nil
}

func (s *AuditService) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce audits the ledger and logs every violation. It returns the number found.
func (s *AuditService) RunOnce(ctx context.Context) int {
	violations, err := s.audit.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "audit failed", slog.String("error", err.Error()), slog.String("module", "audit"))
		return 0
	}
	for _, v := range violations {
		slog.ErrorContext(
			ctx, "ledger invariant violated",
			slog.Uint64("property", v.PropertyID),
			slog.Uint64("agreement", v.AgreementID),
			slog.String("detail", v.Message),
			slog.String("module", "audit"),
		)
	}
	if len(violations) == 0 {
		slog.InfoContext(ctx, "audit passed", slog.String("module", "audit"))
	}
	return len(violations)
}
