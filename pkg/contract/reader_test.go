package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type callerStub struct {
	ret []byte
	err error

	gotMsg   ethereum.CallMsg
	gotBlock *big.Int
	calls    int
}

func (c *callerStub) CallContract(_ context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.calls++
	c.gotMsg = msg
	c.gotBlock = blockNumber
	return c.ret, c.err
}

var _ Caller = (*callerStub)(nil)

// rpcErrStub mimics a node-reported JSON-RPC error (e.g. a revert).
type rpcErrStub struct{}

func (rpcErrStub) Error() string  { return "execution reverted" }
func (rpcErrStub) ErrorCode() int { return 3 }

// checkpointReturn builds the ABI-encoded (bytes32 root, uint32 index)
// return payload of latestCheckpoint().
func checkpointReturn(index uint64) []byte {
	ret := make([]byte, 64)
	big.NewInt(int64(index)).FillBytes(ret[32:])
	return ret
}

var hookAddr = common.HexToAddress("0x48e6c30B97748d1e2e03bf3e9FbE3890ca5f8CCA")

func TestNewReader_NilCaller(t *testing.T) {
	t.Parallel()

	_, err := NewReader(nil, hookAddr)
	require.Error(t, err)
	require.Contains(t, err.Error(), "caller must not be nil")
}

func TestReadLatestCheckpoint(t *testing.T) {
	t.Parallel()

	caller := &callerStub{ret: checkpointReturn(42)}
	reader, err := NewReader(caller, hookAddr)
	require.NoError(t, err)

	got, err := reader.ReadLatestCheckpoint(t.Context())
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)

	// The call must target the hook at the chain head with the packed
	// 4-byte selector and no arguments.
	require.Equal(t, 1, caller.calls)
	require.NotNil(t, caller.gotMsg.To)
	require.Equal(t, hookAddr, *caller.gotMsg.To)
	require.Len(t, caller.gotMsg.Data, 4)
	require.Nil(t, caller.gotBlock)
}

func TestReadLatestCheckpoint_ZeroIsValid(t *testing.T) {
	t.Parallel()

	reader, err := NewReader(&callerStub{ret: checkpointReturn(0)}, hookAddr)
	require.NoError(t, err)

	got, err := reader.ReadLatestCheckpoint(t.Context())
	require.NoError(t, err)
	require.Equal(t, uint64(0), got)
}

func TestReadLatestCheckpoint_Errors(t *testing.T) {
	t.Parallel()

	transportErr := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		caller   *callerStub
		wantKind Kind
	}{
		{
			name:     "transport failure",
			caller:   &callerStub{err: transportErr},
			wantKind: KindTransport,
		},
		{
			name:     "node error response",
			caller:   &callerStub{err: rpcErrStub{}},
			wantKind: KindNode,
		},
		{
			name:     "empty return data",
			caller:   &callerStub{ret: nil},
			wantKind: KindPayload,
		},
		{
			name:     "short return data",
			caller:   &callerStub{ret: make([]byte, 32)},
			wantKind: KindPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader, err := NewReader(tt.caller, hookAddr)
			require.NoError(t, err)

			_, err = reader.ReadLatestCheckpoint(t.Context())
			require.Error(t, err)

			var readErr *ReadError
			require.ErrorAs(t, err, &readErr)
			require.Equal(t, tt.wantKind, readErr.Kind)
		})
	}
}

func TestReadError_Unwrap(t *testing.T) {
	t.Parallel()

	transportErr := errors.New("i/o timeout")
	reader, err := NewReader(&callerStub{err: transportErr}, hookAddr)
	require.NoError(t, err)

	_, err = reader.ReadLatestCheckpoint(t.Context())
	require.ErrorIs(t, err, transportErr)
}
