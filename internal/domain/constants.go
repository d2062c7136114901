package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Currency codes. Bones are the primary (activity) currency, yarn the
// secondary (governance) currency. No conversion exists between them.
const (
	CurrencyBones = "BONES"
	CurrencyYarn  = "YARN"
)

// Transaction kinds. Credit kinds add to a balance, debit kinds subtract.
const (
	TxEarn        = "EARN"
	TxBonus       = "BONUS"
	TxRefund      = "REFUND"
	TxSpend       = "SPEND"
	TxBurn        = "BURN"
	TxTransferOut = "TRANSFER_OUT"
)

// IsCreditKind reports whether kind adds to the balance fold.
func IsCreditKind(kind string) bool {
	return kind == TxEarn || kind == TxBonus || kind == TxRefund
}

// IsDebitKind reports whether kind subtracts from the balance fold.
func IsDebitKind(kind string) bool {
	return kind == TxSpend || kind == TxBurn || kind == TxTransferOut
}

const (
	StakeVoting     = "VOTING"
	StakeRewardPool = "REWARD_POOL"
	StakePenalty    = "PENALTY"
)

const (
	ProposalTypeParkImprovement = "PARK_IMPROVEMENT"
	ProposalTypeEvent           = "EVENT"
	ProposalTypeRuleChange      = "RULE_CHANGE"
	ProposalTypeBudget          = "BUDGET"
)

const (
	ProposalOpen   = "OPEN"
	ProposalClosed = "CLOSED"
)

const (
	VoteYes     = "YES"
	VoteNo      = "NO"
	VoteAbstain = "ABSTAIN"
)

// Collectible spawn types. YARN_BALL rewards yarn; everything else rewards bones.
const (
	SpawnBone     = "BONE"
	SpawnBall     = "BALL"
	SpawnStick    = "STICK"
	SpawnYarnBall = "YARN_BALL"
)

// CurrencyForSpawnType maps a spawn type to its reward currency.
func CurrencyForSpawnType(spawnType string) string {
	if spawnType == SpawnYarnBall {
		return CurrencyYarn
	}
	return CurrencyBones
}

// ValidSpawnType reports whether t is a known collectible type.
func ValidSpawnType(t string) bool {
	switch t {
	case SpawnBone, SpawnBall, SpawnStick, SpawnYarnBall:
		return true
	}
	return false
}

const (
	ChatKindText  = "TEXT"
	ChatKindImage = "IMAGE"
	ChatKindBark  = "BARK"
)

// ValidVoteChoice reports whether c is an accepted ballot choice.
func ValidVoteChoice(c string) bool {
	return c == VoteYes || c == VoteNo || c == VoteAbstain
}

// ValidCurrency reports whether c is one of the two ledger denominations.
func ValidCurrency(c string) bool {
	return c == CurrencyBones || c == CurrencyYarn
}
