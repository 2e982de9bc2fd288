package model

// Stage is the combined hunt and contract view of workflow progress.
type Stage string

const (
	StageNoClient                 Stage = "no_client"
	StageAwaitingTag              Stage = "awaiting_tag"
	StageUnsuccessful             Stage = "unsuccessful"
	StageContractPending          Stage = "contract_pending"
	StageAwaitingClientCompletion Stage = "awaiting_client_completion"
	StageReadyForSignature        Stage = "ready_for_signature"
	StageAwaitingSignatures       Stage = "awaiting_signatures"
	StageFullyExecuted            Stage = "fully_executed"
)

// DeriveStage maps a hunt and its optional contract onto a workflow stage.
func DeriveStage(hunt *Hunt, contract *HuntContract) Stage {
	if contract != nil {
		switch contract.Status {
		case ContractStatusFullyExecuted:
			return StageFullyExecuted
		case ContractStatusAwaitingSignatures:
			return StageAwaitingSignatures
		case ContractStatusReadyForSignature:
			return StageReadyForSignature
		default:
			return StageAwaitingClientCompletion
		}
	}
	if !hunt.HasClient() {
		return StageNoClient
	}
	switch hunt.TagStatus {
	case TagStatusUnsuccessful:
		return StageUnsuccessful
	case TagStatusDrawn, TagStatusConfirmed:
		return StageContractPending
	default:
		return StageAwaitingTag
	}
}
