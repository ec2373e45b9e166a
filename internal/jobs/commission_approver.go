package jobs

import (
	"log"
	"time"

	"travel-affiliate/internal/services"
)

// CommissionApprover promotes pending commissions past the hold period
// to approved on a recurring schedule.
type CommissionApprover struct {
	commissionService *services.CommissionService
	settingsService   *services.SettingsService
	interval          time.Duration
	stopChan          chan struct{}
}

// NewCommissionApprover creates a new auto-approval job
func NewCommissionApprover(commissionService *services.CommissionService, settingsService *services.SettingsService, interval time.Duration) *CommissionApprover {
	return &CommissionApprover{
		commissionService: commissionService,
		settingsService:   settingsService,
		interval:          interval,
		stopChan:          make(chan struct{}),
	}
}

// Start begins the auto-approval loop
func (ca *CommissionApprover) Start() {
	log.Printf("[CommissionApprover] Starting auto-approval job (interval: %v)", ca.interval)

	ticker := time.NewTicker(ca.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ca.RunOnce(time.Now())
		case <-ca.stopChan:
			log.Println("[CommissionApprover] Stopping auto-approval job")
			return
		}
	}
}

// Stop stops the auto-approval loop
func (ca *CommissionApprover) Stop() {
	close(ca.stopChan)
}

// RunOnce approves every pending commission older than the hold period.
// Failures are isolated per commission; a rerun only touches commissions
// still pending past the threshold, so the job is idempotent and safe to
// resume after a crash mid-batch.
func (ca *CommissionApprover) RunOnce(now time.Time) {
	settings, err := ca.settingsService.Get()
	if err != nil {
		log.Printf("[CommissionApprover] Error loading settings: %v", err)
		return
	}

	cutoff := now.AddDate(0, 0, -settings.CommissionHoldDays)

	commissions, err := ca.commissionService.ListPendingBefore(cutoff)
	if err != nil {
		log.Printf("[CommissionApprover] Error fetching pending commissions: %v", err)
		return
	}

	if len(commissions) == 0 {
		return
	}

	log.Printf("[CommissionApprover] %d commissions past the %d-day hold period", len(commissions), settings.CommissionHoldDays)

	approvedCount := 0
	for _, commission := range commissions {
		if _, err := ca.commissionService.Approve(commission.ID); err != nil {
			log.Printf("[CommissionApprover] Error approving commission %d: %v", commission.ID, err)
			continue
		}
		approvedCount++
	}

	if approvedCount > 0 {
		log.Printf("[CommissionApprover] Approved %d commissions", approvedCount)
	}
}
