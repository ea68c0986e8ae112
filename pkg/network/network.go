package network

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Network identifies the Ethereum network served by the monitored RPC
// endpoint. It is resolved exactly once at startup and stays fixed for the
// process lifetime, since every exported sample carries it as a label.
type Network string

const (
	Mainnet Network = "mainnet"
	Holesky Network = "holesky"
)

// chainIDs is the fixed table of supported chain ids. An id outside of it is
// a configuration error: the exporter has no merkle tree hook address for it.
var chainIDs = map[uint64]Network{
	1:     Mainnet,
	17000: Holesky,
}

// merkleTreeHooks holds the Hyperlane merkle tree hook contract address per
// network. See
// https://docs.hyperlane.xyz/docs/reference/contract-addresses#merkle-tree-hook
var merkleTreeHooks = map[Network]common.Address{
	Mainnet: common.HexToAddress("0x48e6c30B97748d1e2e03bf3e9FbE3890ca5f8CCA"),
	Holesky: common.HexToAddress("0x98AAE089CaD930C64a76dD2247a2aC5773a4B8cE"),
}

func (n Network) String() string {
	return string(n)
}

// MerkleTreeHookAddress returns the merkle tree hook contract address for the
// network.
func (n Network) MerkleTreeHookAddress() common.Address {
	return merkleTreeHooks[n]
}

// FromChainID maps a chain id reported by an RPC node to a supported network.
func FromChainID(id *big.Int) (Network, error) {
	if id == nil || !id.IsUint64() {
		return "", fmt.Errorf("unsupported chain id %v", id)
	}
	n, ok := chainIDs[id.Uint64()]
	if !ok {
		return "", fmt.Errorf("unsupported chain id %d", id.Uint64())
	}
	return n, nil
}

// ChainIDReader is the subset of the RPC client needed to resolve the
// network. *ethclient.Client satisfies it.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Resolve queries the node's chain id once and maps it to a supported
// network. A failure here is fatal to the caller: serving metrics under a
// wrong or unknown network label is worse than not starting.
func Resolve(ctx context.Context, client ChainIDReader) (Network, error) {
	id, err := client.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to query chain id: %w", err)
	}
	return FromChainID(id)
}
