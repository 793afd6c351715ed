package contest

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Reader performs read-only calls against one contest contract.
type Reader struct {
	caller  ethereum.ContractCaller
	address common.Address
	abi     abi.ABI
}

// NewReader binds a reader to the contract at address.
func NewReader(caller ethereum.ContractCaller, address common.Address) *Reader {
	return &Reader{caller: caller, address: address, abi: parsedABI}
}

// Address returns the bound contract address.
func (r *Reader) Address() common.Address {
	return r.address
}

func (r *Reader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	for _, a := range args {
		if n, ok := a.(*big.Int); ok && n == nil {
			return nil, fmt.Errorf("%s: nil identifier", method)
		}
	}
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: pack: %w", method, err)
	}
	to := r.address
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty response from %s", method, r.address.Hex())
	}
	values, err := r.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", method, ErrMalformed, err)
	}
	return values, nil
}

// ProposalIDs lists every proposal identifier.
func (r *Reader) ProposalIDs(ctx context.Context) ([]*big.Int, error) {
	values, err := r.call(ctx, MethodProposalIDs)
	if err != nil {
		return nil, err
	}
	return single[[]*big.Int](MethodProposalIDs, values)
}

// Proposal reads one proposal body.
func (r *Reader) Proposal(ctx context.Context, id *big.Int) (RawProposal, error) {
	values, err := r.call(ctx, MethodProposal, id)
	if err != nil {
		return RawProposal{}, err
	}
	if len(values) != 1 {
		return RawProposal{}, outputCount(MethodProposal, 1, len(values))
	}
	core, err := convert[proposalCore](MethodProposal, values[0])
	if err != nil {
		return RawProposal{}, err
	}
	return RawProposal{
		ID:            new(big.Int).Set(id),
		Author:        core.Author,
		Exists:        core.Exists,
		Description:   core.Description,
		TargetAddress: core.TargetMetadata.TargetAddress,
		SafeSigners:   core.SafeMetadata.Signers,
		SafeThreshold: orZero(core.SafeMetadata.Threshold),
		Fields: FieldsMetadata{
			Addresses: core.FieldsMetadata.AddressArray,
			Strings:   core.FieldsMetadata.StringArray,
			Uints:     core.FieldsMetadata.UintArray,
		},
	}, nil
}

// Votes reads the for/against tally of a proposal.
func (r *Reader) Votes(ctx context.Context, id *big.Int) (VoteTally, error) {
	values, err := r.call(ctx, MethodVotes, id)
	if err != nil {
		return VoteTally{}, err
	}
	if len(values) != 2 {
		return VoteTally{}, outputCount(MethodVotes, 2, len(values))
	}
	forVotes, ok1 := values[0].(*big.Int)
	against, ok2 := values[1].(*big.Int)
	if !ok1 || !ok2 {
		return VoteTally{}, fmt.Errorf("%s: %w: unexpected tally types %T, %T", MethodVotes, ErrMalformed, values[0], values[1])
	}
	return VoteTally{For: orZero(forVotes), Against: orZero(against)}, nil
}

// CommentIDs lists the comment identifiers of a proposal.
func (r *Reader) CommentIDs(ctx context.Context, proposalID *big.Int) ([]*big.Int, error) {
	values, err := r.call(ctx, MethodCommentIDs, proposalID)
	if err != nil {
		return nil, err
	}
	return single[[]*big.Int](MethodCommentIDs, values)
}

// Comment reads one comment. parent fills in a zero proposal reference.
func (r *Reader) Comment(ctx context.Context, id, parent *big.Int) (RawComment, error) {
	values, err := r.call(ctx, MethodComment, id)
	if err != nil {
		return RawComment{}, err
	}
	if len(values) != 1 {
		return RawComment{}, outputCount(MethodComment, 1, len(values))
	}
	core, err := convert[commentCore](MethodComment, values[0])
	if err != nil {
		return RawComment{}, err
	}
	proposalID := orZero(core.ProposalId)
	if proposalID.Sign() == 0 && parent != nil {
		proposalID = new(big.Int).Set(parent)
	}
	ts := orZero(core.Timestamp)
	if !ts.IsInt64() {
		return RawComment{}, fmt.Errorf("%s: %w: timestamp %s out of range", MethodComment, ErrMalformed, ts)
	}
	return RawComment{
		ID:         new(big.Int).Set(id),
		ProposalID: proposalID,
		Author:     core.Author,
		Content:    core.CommentContent,
		Timestamp:  ts.Int64(),
	}, nil
}

// String reads a string-valued scalar such as name or prompt.
func (r *Reader) String(ctx context.Context, method string) (string, error) {
	values, err := r.call(ctx, method)
	if err != nil {
		return "", err
	}
	return single[string](method, values)
}

// Uint reads a uint256 scalar such as costToVote or contestDeadline.
func (r *Reader) Uint(ctx context.Context, method string) (*big.Int, error) {
	values, err := r.call(ctx, method)
	if err != nil {
		return nil, err
	}
	v, err := single[*big.Int](method, values)
	if err != nil {
		return nil, err
	}
	return orZero(v), nil
}

// State reads the contest lifecycle state.
func (r *Reader) State(ctx context.Context) (State, error) {
	values, err := r.call(ctx, MethodState)
	if err != nil {
		return 0, err
	}
	v, err := single[uint8](MethodState, values)
	if err != nil {
		return 0, err
	}
	return State(v), nil
}

func single[T any](method string, values []interface{}) (T, error) {
	var zero T
	if len(values) != 1 {
		return zero, outputCount(method, 1, len(values))
	}
	v, ok := values[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w: unexpected type %T", method, ErrMalformed, values[0])
	}
	return v, nil
}

// convert maps an unpacked anonymous tuple onto T. abi.ConvertType panics on
// shape mismatch, which is reported as ErrMalformed instead.
func convert[T any](method string, in interface{}) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", method, ErrMalformed, r)
		}
	}()
	if in == nil {
		return out, fmt.Errorf("%s: %w: nil tuple", method, ErrMalformed)
	}
	converted, ok := abi.ConvertType(in, new(T)).(*T)
	if !ok || converted == nil {
		return out, fmt.Errorf("%s: %w: cannot convert %T", method, ErrMalformed, in)
	}
	return *converted, nil
}

func outputCount(method string, want, got int) error {
	return fmt.Errorf("%s: %w: want %d outputs, got %d", method, ErrMalformed, want, got)
}

// IsMalformed reports whether err came from a shape mismatch.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
