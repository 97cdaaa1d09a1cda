package app

import (
	"context"
	"time"

	"academy-service/internal/domain"
	"github.com/google/uuid"
)

// CommerceService executes purchases and reward redemptions. Debit+grant
// (and redeem+append) run under the student's lock so concurrent requests
// for the same student cannot interleave.
type CommerceService struct {
	students     StudentRepository
	catalog      CatalogRepository
	entitlements EntitlementRepository
	redemptions  RedemptionRepository
	ledger       *Ledger
	locks        *StudentLocks
	notifier     Notifier
	clock        func() time.Time
	newID        func() string
}

func NewCommerceService(
	students StudentRepository,
	catalog CatalogRepository,
	entitlements EntitlementRepository,
	redemptions RedemptionRepository,
	ledger *Ledger,
	locks *StudentLocks,
	notifier Notifier,
) *CommerceService {
	return &CommerceService{
		students:     students,
		catalog:      catalog,
		entitlements: entitlements,
		redemptions:  redemptions,
		ledger:       ledger,
		locks:        locks,
		notifier:     notifier,
		clock:        time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

// Purchase debits the item's price and grants the entitlement as one unit.
// A repeated purchase is a user error (domain.ErrAlreadyOwned), not an
// idempotent no-op; only the progression unlock path regrants silently.
func (s *CommerceService) Purchase(ctx context.Context, studentID, itemID string) (domain.Entitlement, error) {
	defer s.locks.Lock(studentID).Unlock()

	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if student.Banned {
		return domain.Entitlement{}, domain.ErrStudentBanned
	}

	owned, err := s.entitlements.Has(ctx, studentID, itemID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if owned {
		return domain.Entitlement{}, domain.ErrAlreadyOwned
	}

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return domain.Entitlement{}, err
	}

	entitlement := domain.Entitlement{
		StudentID: studentID,
		ItemID:    itemID,
		Source:    domain.EntitlementPurchased,
		GrantedAt: s.clock(),
	}

	if item.Price > 0 {
		if _, err := s.ledger.Debit(ctx, studentID, item.Price, "purchase:"+itemID); err != nil {
			return domain.Entitlement{}, err
		}
	}
	if err := s.entitlements.Grant(ctx, entitlement); err != nil {
		// Refund so a failed grant never leaves a dangling debit.
		if item.Price > 0 {
			_, _ = s.ledger.Credit(ctx, studentID, item.Price, "purchase-refund:"+itemID)
		}
		return domain.Entitlement{}, err
	}

	s.notifier.Emit(studentID, domain.NotifyPurchaseCompleted, map[string]any{
		"itemId": itemID,
		"title":  item.Title,
		"price":  item.Price,
	})
	return entitlement, nil
}

// Redeem debits points and appends a redemption record, all or nothing.
func (s *CommerceService) Redeem(ctx context.Context, studentID, rewardID string, pointCost int64) (domain.Redemption, error) {
	if pointCost <= 0 {
		return domain.Redemption{}, domain.ErrInvalidAmount
	}

	defer s.locks.Lock(studentID).Unlock()

	if _, err := s.students.Get(ctx, studentID); err != nil {
		return domain.Redemption{}, err
	}

	if _, err := s.ledger.RedeemPoints(ctx, studentID, pointCost, "redeem:"+rewardID); err != nil {
		return domain.Redemption{}, err
	}

	redemption := domain.Redemption{
		ID:        s.newID(),
		StudentID: studentID,
		RewardID:  rewardID,
		PointCost: pointCost,
		CreatedAt: s.clock(),
	}
	if err := s.redemptions.Append(ctx, redemption); err != nil {
		_, _ = s.ledger.AwardPoints(ctx, studentID, pointCost, "redeem-revert:"+rewardID)
		return domain.Redemption{}, err
	}

	s.notifier.Emit(studentID, domain.NotifyRewardRedeemed, map[string]any{
		"rewardId":  rewardID,
		"pointCost": pointCost,
	})
	return redemption, nil
}
