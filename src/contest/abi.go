package contest

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract method names consumed by the reader.
const (
	MethodProposalIDs     = "getAllProposalIds"
	MethodProposal        = "getProposal"
	MethodVotes           = "proposalVotes"
	MethodCommentIDs      = "getProposalComments"
	MethodComment         = "getComment"
	MethodName            = "name"
	MethodPrompt          = "prompt"
	MethodCostToPropose   = "costToPropose"
	MethodCostToVote      = "costToVote"
	MethodVotingPeriod    = "votingPeriod"
	MethodContestStart    = "contestStart"
	MethodContestDeadline = "contestDeadline"
	MethodTotalVotesCast  = "totalVotesCast"
	MethodState           = "state"
)

// contestABI is the read-only subset of the contest contract interface.
const contestABI = `[
  {"type":"function","name":"getAllProposalIds","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getProposal","stateMutability":"view",
   "inputs":[{"name":"proposalId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"author","type":"address"},
     {"name":"exists","type":"bool"},
     {"name":"description","type":"string"},
     {"name":"targetMetadata","type":"tuple","components":[
       {"name":"targetAddress","type":"address"}]},
     {"name":"safeMetadata","type":"tuple","components":[
       {"name":"signers","type":"address[]"},
       {"name":"threshold","type":"uint256"}]},
     {"name":"fieldsMetadata","type":"tuple","components":[
       {"name":"addressArray","type":"address[]"},
       {"name":"stringArray","type":"string[]"},
       {"name":"uintArray","type":"uint256[]"}]}]}]},
  {"type":"function","name":"proposalVotes","stateMutability":"view",
   "inputs":[{"name":"proposalId","type":"uint256"}],
   "outputs":[{"name":"forVotes","type":"uint256"},{"name":"againstVotes","type":"uint256"}]},
  {"type":"function","name":"getProposalComments","stateMutability":"view",
   "inputs":[{"name":"proposalId","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getComment","stateMutability":"view",
   "inputs":[{"name":"commentId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"author","type":"address"},
     {"name":"timestamp","type":"uint256"},
     {"name":"proposalId","type":"uint256"},
     {"name":"commentContent","type":"string"}]}]},
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"prompt","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"costToPropose","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"costToVote","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"votingPeriod","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"contestStart","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"contestDeadline","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalVotesCast","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"state","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// ParsedABI returns the parsed contest ABI.
func ParsedABI() abi.ABI {
	return parsedABI
}

var parsedABI = mustParseABI(contestABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("contest: parse abi: " + err.Error())
	}
	return parsed
}
