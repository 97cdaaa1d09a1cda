package domain

import "time"

// ItemKind distinguishes purchasable catalog item types.
type ItemKind string

const (
	ItemLesson       ItemKind = "lesson"
	ItemSubscription ItemKind = "subscription"
	ItemBook         ItemKind = "book"
)

// Student is a platform account. Balance and Points are integer units and
// never go negative; they are mutated only through the ledger.
type Student struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	StudentNumber string    `json:"studentNumber"`
	ParentNumber  string    `json:"parentNumber"`
	Grade         string    `json:"grade"`
	Balance       int64     `json:"balance"`
	Points        int64     `json:"points"`
	Banned        bool      `json:"banned"`
	BanReason     string    `json:"banReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Question is a single multiple-choice exam question. CorrectIndex points
// into Choices.
type Question struct {
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
}

// CatalogItem is an immutable content definition. Questions and SuccessorID
// are only meaningful for lessons.
type CatalogItem struct {
	ID          string     `json:"id"`
	Kind        ItemKind   `json:"kind"`
	Title       string     `json:"title"`
	Price       int64      `json:"price"`
	Grade       string     `json:"grade,omitempty"`
	SuccessorID string     `json:"successorId,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// EntitlementSource records how an entitlement came to exist.
type EntitlementSource string

const (
	EntitlementPurchased EntitlementSource = "purchase"
	EntitlementUnlocked  EntitlementSource = "unlock"
)

// Entitlement means the student may consume the item without further
// payment. At most one per (student, item); never revoked.
type Entitlement struct {
	StudentID string            `json:"studentId"`
	ItemID    string            `json:"itemId"`
	Source    EntitlementSource `json:"source"`
	GrantedAt time.Time         `json:"grantedAt"`
}

// Attempt is the per-(student, lesson) exam history. Once Passed is true the
// record is frozen.
type Attempt struct {
	StudentID        string    `json:"studentId"`
	LessonID         string    `json:"lessonId"`
	AttemptCount     int       `json:"attemptCount"`
	BestScorePercent float64   `json:"bestScorePercent"`
	Passed           bool      `json:"passed"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ClaimStatus is the topup claim lifecycle; pending is the only non-terminal
// state.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// TopupClaim is a student-submitted balance-increase request awaiting staff
// review. The credit happens exactly once, at approval.
type TopupClaim struct {
	ID         string      `json:"id"`
	StudentID  string      `json:"studentId"`
	Amount     int64       `json:"amount"`
	ProofRef   string      `json:"proofRef"`
	Status     ClaimStatus `json:"status"`
	ResolvedBy string      `json:"resolvedBy,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	ResolvedAt *time.Time  `json:"resolvedAt,omitempty"`
}

// Redemption is an append-only points-for-reward exchange record.
type Redemption struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	RewardID  string    `json:"rewardId"`
	PointCost int64     `json:"pointCost"`
	CreatedAt time.Time `json:"createdAt"`
}

// WalletEntryKind classifies wallet log entries.
type WalletEntryKind string

const (
	WalletCredit       WalletEntryKind = "credit"
	WalletDebit        WalletEntryKind = "debit"
	WalletPointsAward  WalletEntryKind = "points_award"
	WalletPointsRedeem WalletEntryKind = "points_redeem"
)

// WalletEntry is one line of the append-only wallet history. Amount is
// always positive; Kind carries the sign. BalanceAfter snapshots the
// affected counter right after the mutation.
type WalletEntry struct {
	ID           string          `json:"id"`
	StudentID    string          `json:"studentId"`
	Kind         WalletEntryKind `json:"kind"`
	Amount       int64           `json:"amount"`
	Reference    string          `json:"reference,omitempty"`
	BalanceAfter int64           `json:"balanceAfter"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Notification is an event emitted to a student; delivery is best effort.
type Notification struct {
	ID        string         `json:"id"`
	StudentID string         `json:"studentId"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Notification kinds emitted by the core services.
const (
	NotifyPurchaseCompleted = "purchase_completed"
	NotifyExamResult        = "exam_result"
	NotifyLessonUnlocked    = "lesson_unlocked"
	NotifyTopupApproved     = "topup_approved"
	NotifyTopupRejected     = "topup_rejected"
	NotifyRewardRedeemed    = "reward_redeemed"
	NotifyTopupDigest       = "topup_pending_digest"
)

// ExamResult is returned to the caller of SubmitExam.
type ExamResult struct {
	Passed       bool    `json:"passed"`
	ScorePercent float64 `json:"scorePercent"`
	AttemptCount int     `json:"attemptCount"`
	TotalPoints  int64   `json:"totalPoints"`
	UnlockedID   string  `json:"unlockedId,omitempty"`
}
