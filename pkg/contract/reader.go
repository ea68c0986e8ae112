package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// merkleTreeHookABI is the fragment of the Hyperlane MerkleTreeHook ABI this
// exporter uses. latestCheckpoint returns the current merkle root and the
// index of the latest committed message; only the index is exported.
const merkleTreeHookABI = `[{"inputs":[],"name":"latestCheckpoint","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"},{"internalType":"uint32","name":"","type":"uint32"}],"stateMutability":"view","type":"function"}]`

const latestCheckpointMethod = "latestCheckpoint"

// Caller is the subset of the RPC client needed to read the contract.
// *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader issues read-only latestCheckpoint calls against a merkle tree hook
// contract. It never writes to chain.
type Reader struct {
	caller   Caller
	address  common.Address
	hookABI  abi.ABI
	calldata []byte
}

// NewReader creates a Reader bound to the merkle tree hook at address. The
// call data is packed once up front since the accessor takes no arguments.
func NewReader(caller Caller, address common.Address) (*Reader, error) {
	if caller == nil {
		return nil, errors.New("caller must not be nil")
	}

	parsed, err := abi.JSON(strings.NewReader(merkleTreeHookABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse merkle tree hook ABI: %w", err)
	}

	calldata, err := parsed.Pack(latestCheckpointMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", latestCheckpointMethod, err)
	}

	return &Reader{
		caller:   caller,
		address:  address,
		hookABI:  parsed,
		calldata: calldata,
	}, nil
}

// ReadLatestCheckpoint calls latestCheckpoint() at the chain head and returns
// the checkpoint index. Failures are returned as *ReadError so the caller can
// distinguish transport, node and payload problems.
func (r *Reader) ReadLatestCheckpoint(ctx context.Context) (uint64, error) {
	msg := ethereum.CallMsg{
		To:   &r.address,
		Data: r.calldata,
	}

	ret, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		kind := KindTransport
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			kind = KindNode
		}
		return 0, &ReadError{Kind: kind, Err: err}
	}

	if len(ret) == 0 {
		return 0, &ReadError{Kind: KindPayload, Err: errors.New("empty return data")}
	}

	out, err := r.hookABI.Unpack(latestCheckpointMethod, ret)
	if err != nil {
		return 0, &ReadError{Kind: KindPayload, Err: err}
	}
	if len(out) != 2 {
		return 0, &ReadError{Kind: KindPayload, Err: fmt.Errorf("expected 2 return values, got %d", len(out))}
	}

	index, ok := out[1].(uint32)
	if !ok {
		return 0, &ReadError{Kind: KindPayload, Err: fmt.Errorf("unexpected checkpoint index type %T", out[1])}
	}

	return uint64(index), nil
}
