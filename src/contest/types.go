package contest

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrMalformed marks a contract response whose shape does not match the ABI.
var ErrMalformed = errors.New("contest: malformed contract response")

// FieldsMetadata carries the free-form metadata arrays attached to a proposal.
type FieldsMetadata struct {
	Addresses []common.Address `json:"addressArray"`
	Strings   []string         `json:"stringArray"`
	Uints     []*big.Int       `json:"uintArray"`
}

// RawProposal is a proposal as recorded by the contract.
type RawProposal struct {
	ID            *big.Int         `json:"id"`
	Author        common.Address   `json:"author"`
	Exists        bool             `json:"exists"`
	Description   string           `json:"description"`
	TargetAddress common.Address   `json:"targetAddress"`
	SafeSigners   []common.Address `json:"safeSigners"`
	SafeThreshold *big.Int         `json:"safeThreshold"`
	Fields        FieldsMetadata   `json:"fieldsMetadata"`
}

// VoteTally holds the cumulative for/against weights in base units (1e18).
type VoteTally struct {
	For     *big.Int `json:"forVotes"`
	Against *big.Int `json:"againstVotes"`
}

// RawComment is a comment as recorded by the contract.
type RawComment struct {
	ID         *big.Int       `json:"id"`
	ProposalID *big.Int       `json:"proposalId"`
	Author     common.Address `json:"author"`
	Content    string         `json:"content"`
	// Timestamp is Unix seconds.
	Timestamp int64 `json:"timestamp"`
}

// State is the contest lifecycle state.
type State uint8

const (
	StateNotStarted State = iota
	StateActive
	StateCanceled
	StateQueued
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateActive:
		return "Active"
	case StateCanceled:
		return "Canceled"
	case StateQueued:
		return "Queued"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Metadata holds the scalar contest reads.
type Metadata struct {
	Name            string   `json:"name"`
	Prompt          string   `json:"prompt"`
	CostToPropose   *big.Int `json:"costToPropose"`
	CostToVote      *big.Int `json:"costToVote"`
	VotingPeriod    *big.Int `json:"votingPeriod"`
	ContestStart    *big.Int `json:"contestStart"`
	ContestDeadline *big.Int `json:"contestDeadline"`
	TotalVotesCast  *big.Int `json:"totalVotesCast"`
	State           State    `json:"state"`
}

// proposalCore mirrors the getProposal output tuple field for field.
type proposalCore struct {
	Author         common.Address
	Exists         bool
	Description    string
	TargetMetadata struct {
		TargetAddress common.Address
	}
	SafeMetadata struct {
		Signers   []common.Address
		Threshold *big.Int
	}
	FieldsMetadata struct {
		AddressArray []common.Address
		StringArray  []string
		UintArray    []*big.Int
	}
}

// commentCore mirrors the getComment output tuple.
type commentCore struct {
	Author         common.Address
	Timestamp      *big.Int
	ProposalId     *big.Int
	CommentContent string
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
