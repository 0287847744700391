package coordinator

import "errors"

// CoordinatorError is the closed error taxonomy every rejected event
// returns (§7): every rejection leaves the coordinator's state completely
// unchanged, never partially applied.
var (
	ErrNoActiveRound            = errors.New("coordinator: event references an absent round")
	ErrInvalidRunState           = errors.New("coordinator: operation illegal in current run state")
	ErrInvalidWitness            = errors.New("coordinator: witness proof does not match selection")
	ErrDuplicateWitness          = errors.New("coordinator: witness already recorded for this round")
	ErrInvalidHealthCheck        = errors.New("coordinator: accuser not elected or accused invalid")
	ErrWitnessesFull             = errors.New("coordinator: per-round witness buffer exhausted")
	ErrAlreadyCheckpointed       = errors.New("coordinator: checkpoint already set this epoch")
	ErrCannotResume              = errors.New("coordinator: unpause requested but preconditions unmet")
	ErrInvalidCommitteeSelection = errors.New("coordinator: committee role mismatch")
	ErrInvalidCommitteeProof     = errors.New("coordinator: committee proof mismatch")
	ErrHalted                    = errors.New("coordinator: operation on finished or halted run")
	ErrInvalidWithdraw           = errors.New("coordinator: exit illegal now")
	ErrClientsFull               = errors.New("coordinator: active roster is at capacity")
	ErrSignerMismatch            = errors.New("coordinator: event signer does not match client id")
	ErrUnauthorized              = errors.New("coordinator: caller lacks the required authorization")
	ErrMoreClientsThanBatches    = errors.New("coordinator: fewer batches than clients this round")
	ErrNotMainAuthority          = errors.New("coordinator: only the main authority may perform this operation")
)
