package jobs

import (
	"context"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TopupDigest periodically surfaces unresolved topup claims so the approval
// queue does not silently grow. Each run emits one digest notification per
// student with pending claims.
type TopupDigest struct {
	cronEngine *cron.Cron
	topups     *app.TopupService
	notifier   app.Notifier
	log        *logrus.Logger
	spec       string
}

func NewTopupDigest(topups *app.TopupService, notifier app.Notifier, log *logrus.Logger, spec string) *TopupDigest {
	return &TopupDigest{
		cronEngine: cron.New(),
		topups:     topups,
		notifier:   notifier,
		log:        log,
		spec:       spec,
	}
}

// Start registers and starts the cron job. Returns an error only for an
// invalid cron spec.
func (d *TopupDigest) Start() error {
	_, err := d.cronEngine.AddFunc(d.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		d.Run(ctx)
	})
	if err != nil {
		return err
	}
	d.cronEngine.Start()
	d.log.WithField("spec", d.spec).Info("topup digest job started")
	return nil
}

// Run executes one digest pass. Exported so operators can trigger it
// outside the schedule.
func (d *TopupDigest) Run(ctx context.Context) {
	claims, err := d.topups.ListPending(ctx)
	if err != nil {
		d.log.WithError(err).Error("topup digest: list pending claims")
		return
	}
	if len(claims) == 0 {
		return
	}

	type bucket struct {
		count int
		total int64
		ids   []string
	}
	perStudent := make(map[string]*bucket)
	for _, c := range claims {
		b, ok := perStudent[c.StudentID]
		if !ok {
			b = &bucket{}
			perStudent[c.StudentID] = b
		}
		b.count++
		b.total += c.Amount
		b.ids = append(b.ids, c.ID)
	}

	for studentID, b := range perStudent {
		d.notifier.Emit(studentID, domain.NotifyTopupDigest, map[string]any{
			"pendingCount": b.count,
			"totalAmount":  b.total,
			"claimIds":     b.ids,
		})
	}
	d.log.WithField("pending", len(claims)).Info("topup digest emitted")
}

// Stop stops the scheduler and waits for a running job to finish.
func (d *TopupDigest) Stop() {
	ctx := d.cronEngine.Stop()
	<-ctx.Done()
}
