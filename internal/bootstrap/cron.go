package bootstrap

import (
	"context"
	"math/big"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	allocservice "github.com/mfahadasghar/flow-fund/internal/allocator/service"
	"github.com/mfahadasghar/flow-fund/internal/monitor"
)

// StartDustReporter schedules the periodic dust accounting job. The job
// reads the allocator totals, refreshes the dust gauge, and logs the
// running aggregates so held dust never drifts unnoticed.
func StartDustReporter(spec string, alloc *allocservice.Service, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		totals, err := alloc.Totals(ctx)
		if err != nil {
			log.Warn("dust accounting job failed", zap.Error(err))
			return
		}

		if monitor.Business != nil {
			dust, _ := new(big.Float).SetInt(totals.Dust.ToBig()).Float64()
			monitor.Business.DustHeld.Set(dust)
		}

		log.Info("dust accounting",
			zap.String("dust", totals.Dust.Dec()),
			zap.String("total_donated", totals.TotalDonated.Dec()),
			zap.Int64("donation_count", totals.DonationCount),
		)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
