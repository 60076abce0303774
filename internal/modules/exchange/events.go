package exchange

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Event signatures handled by the exchange module.
var (
	TopicPairCreated = common.HexToHash("0x0d3648bd0f6ba80134a33ba9275ac585d9d315f0ad8355cddefde31afa28d0e9")
	TopicTransfer    = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	TopicSync        = common.HexToHash("0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1")
	TopicMint        = common.HexToHash("0x4c209b5fc8ad50758f13e2e1088ba56a560dff690a1c6fef26394f4c03821c4f")
	TopicBurn        = common.HexToHash("0xdccd412f0b1252819cb1fd330b93224ca42612892bb3f4f789976e6d81936496")
	TopicSwap        = common.HexToHash("0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822")
)

// PairCreatedEvent is the factory's pair deployment notification.
type PairCreatedEvent struct {
	Token0 common.Address
	Token1 common.Address
	Pair   common.Address
}

// TransferEvent is an ERC-20 transfer of a pair's LP token.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// SyncEvent carries a pair's post-operation reserves.
type SyncEvent struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// MintEvent is the pair-level liquidity deposit event.
type MintEvent struct {
	Sender  common.Address
	Amount0 *big.Int
	Amount1 *big.Int
}

// BurnEvent is the pair-level liquidity withdrawal event.
type BurnEvent struct {
	Sender  common.Address
	To      common.Address
	Amount0 *big.Int
	Amount1 *big.Int
}

// SwapEvent is the pair-level trade event.
type SwapEvent struct {
	Sender     common.Address
	To         common.Address
	Amount0In  *big.Int
	Amount1In  *big.Int
	Amount0Out *big.Int
	Amount1Out *big.Int
}

func decodePairCreated(log *types.Log) (*PairCreatedEvent, error) {
	if len(log.Topics) < 3 || len(log.Data) < 32 {
		return nil, ErrMalformedEvent{Event: "PairCreated", Log: log}
	}
	return &PairCreatedEvent{
		Token0: common.BytesToAddress(log.Topics[1].Bytes()),
		Token1: common.BytesToAddress(log.Topics[2].Bytes()),
		Pair:   common.BytesToAddress(log.Data[0:32]),
	}, nil
}

func decodeTransfer(log *types.Log) (*TransferEvent, error) {
	if len(log.Topics) < 3 || len(log.Data) < 32 {
		return nil, ErrMalformedEvent{Event: "Transfer", Log: log}
	}
	return &TransferEvent{
		From:  common.BytesToAddress(log.Topics[1].Bytes()),
		To:    common.BytesToAddress(log.Topics[2].Bytes()),
		Value: new(big.Int).SetBytes(log.Data[0:32]),
	}, nil
}

func decodeSync(log *types.Log) (*SyncEvent, error) {
	if len(log.Data) < 64 {
		return nil, ErrMalformedEvent{Event: "Sync", Log: log}
	}
	return &SyncEvent{
		Reserve0: new(big.Int).SetBytes(log.Data[0:32]),
		Reserve1: new(big.Int).SetBytes(log.Data[32:64]),
	}, nil
}

func decodeMint(log *types.Log) (*MintEvent, error) {
	if len(log.Topics) < 2 || len(log.Data) < 64 {
		return nil, ErrMalformedEvent{Event: "Mint", Log: log}
	}
	return &MintEvent{
		Sender:  common.BytesToAddress(log.Topics[1].Bytes()),
		Amount0: new(big.Int).SetBytes(log.Data[0:32]),
		Amount1: new(big.Int).SetBytes(log.Data[32:64]),
	}, nil
}

func decodeBurn(log *types.Log) (*BurnEvent, error) {
	if len(log.Topics) < 3 || len(log.Data) < 64 {
		return nil, ErrMalformedEvent{Event: "Burn", Log: log}
	}
	return &BurnEvent{
		Sender:  common.BytesToAddress(log.Topics[1].Bytes()),
		To:      common.BytesToAddress(log.Topics[2].Bytes()),
		Amount0: new(big.Int).SetBytes(log.Data[0:32]),
		Amount1: new(big.Int).SetBytes(log.Data[32:64]),
	}, nil
}

func decodeSwap(log *types.Log) (*SwapEvent, error) {
	if len(log.Topics) < 3 || len(log.Data) < 128 {
		return nil, ErrMalformedEvent{Event: "Swap", Log: log}
	}
	return &SwapEvent{
		Sender:     common.BytesToAddress(log.Topics[1].Bytes()),
		To:         common.BytesToAddress(log.Topics[2].Bytes()),
		Amount0In:  new(big.Int).SetBytes(log.Data[0:32]),
		Amount1In:  new(big.Int).SetBytes(log.Data[32:64]),
		Amount0Out: new(big.Int).SetBytes(log.Data[64:96]),
		Amount1Out: new(big.Int).SetBytes(log.Data[96:128]),
	}, nil
}

// ErrMalformedEvent reports a log whose topics or data do not match the
// event layout for its signature.
type ErrMalformedEvent struct {
	Event string
	Log   *types.Log
}

func (e ErrMalformedEvent) Error() string {
	return "malformed " + e.Event + " event in tx " + e.Log.TxHash.Hex()
}
