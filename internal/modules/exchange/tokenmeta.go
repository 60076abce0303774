package exchange

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// TokenMetadata is the on-chain metadata of an ERC-20 token. Decimals
// are mandatory; symbol and name fall back to "unknown" and total
// supply to zero when the contract does not answer.
type TokenMetadata struct {
	Symbol      string
	Name        string
	Decimals    int32
	TotalSupply *big.Int
}

// TokenFetcher resolves ERC-20 metadata for a token address.
type TokenFetcher interface {
	FetchToken(ctx context.Context, address common.Address) (*TokenMetadata, error)
}

// ErrNoDecimals marks a token whose decimals call failed. Pairs over
// such tokens cannot be indexed.
var ErrNoDecimals = errors.New("token decimals unresolvable")

const unknownLabel = "unknown"

// Some non-standard tokens return bytes32 from symbol()/name(). A value
// of 0x…01 is an ABI-encoding artifact of an empty string, not a label.
var nullBytes32Sentinel = common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000001")

const erc20ABIString = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

const erc20Bytes32ABIString = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"bytes32"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"bytes32"}],"type":"function"}
]`

// ERC20Fetcher fetches token metadata over RPC using the string ABI
// with a bytes32 fallback for non-standard tokens.
type ERC20Fetcher struct {
	client     *ethclient.Client
	erc20ABI   abi.ABI
	bytes32ABI abi.ABI
}

// NewERC20Fetcher builds a fetcher bound to an RPC client.
func NewERC20Fetcher(client *ethclient.Client) *ERC20Fetcher {
	erc20ABI, _ := abi.JSON(strings.NewReader(erc20ABIString))
	bytes32ABI, _ := abi.JSON(strings.NewReader(erc20Bytes32ABIString))
	return &ERC20Fetcher{
		client:     client,
		erc20ABI:   erc20ABI,
		bytes32ABI: bytes32ABI,
	}
}

var _ TokenFetcher = (*ERC20Fetcher)(nil)

// FetchToken resolves a token's metadata. It fails only when decimals
// cannot be read; every other accessor degrades to a default.
func (f *ERC20Fetcher) FetchToken(ctx context.Context, address common.Address) (*TokenMetadata, error) {
	contract := bind.NewBoundContract(address, f.erc20ABI, f.client, f.client, f.client)
	bytes32Contract := bind.NewBoundContract(address, f.bytes32ABI, f.client, f.client, f.client)
	opts := &bind.CallOpts{Context: ctx}

	decimals, err := f.fetchDecimals(opts, contract)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDecimals, address.Hex())
	}

	meta := &TokenMetadata{
		Symbol:      f.fetchLabel(opts, contract, bytes32Contract, "symbol"),
		Name:        f.fetchLabel(opts, contract, bytes32Contract, "name"),
		Decimals:    decimals,
		TotalSupply: f.fetchTotalSupply(opts, contract),
	}
	return meta, nil
}

func (f *ERC20Fetcher) fetchDecimals(opts *bind.CallOpts, contract *bind.BoundContract) (int32, error) {
	results := []interface{}{new(uint8)}
	if err := contract.Call(opts, &results, "decimals"); err != nil {
		return 0, err
	}
	decimals, ok := results[0].(*uint8)
	if !ok || decimals == nil {
		return 0, errors.New("unexpected decimals result")
	}
	return int32(*decimals), nil
}

// fetchLabel reads symbol or name, trying the string accessor first and
// the bytes32 variant second.
func (f *ERC20Fetcher) fetchLabel(opts *bind.CallOpts, contract, bytes32Contract *bind.BoundContract, method string) string {
	results := []interface{}{new(string)}
	if err := contract.Call(opts, &results, method); err == nil {
		if s, ok := results[0].(*string); ok && s != nil && *s != "" {
			return *s
		}
	}

	results = []interface{}{new([32]byte)}
	if err := bytes32Contract.Call(opts, &results, method); err == nil {
		if raw, ok := results[0].(*[32]byte); ok && raw != nil {
			h := common.BytesToHash(raw[:])
			if h != (common.Hash{}) && h != nullBytes32Sentinel {
				return strings.TrimRight(string(raw[:]), "\x00")
			}
		}
	}

	return unknownLabel
}

func (f *ERC20Fetcher) fetchTotalSupply(opts *bind.CallOpts, contract *bind.BoundContract) *big.Int {
	results := []interface{}{new(*big.Int)}
	if err := contract.Call(opts, &results, "totalSupply"); err != nil {
		return big.NewInt(0)
	}
	if supply, ok := results[0].(**big.Int); ok && supply != nil && *supply != nil {
		return *supply
	}
	return big.NewInt(0)
}
