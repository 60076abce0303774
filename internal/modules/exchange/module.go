package exchange

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/zilstream/exchange-subgraph/internal/database"
	"github.com/zilstream/exchange-subgraph/internal/entity"
	"github.com/zilstream/exchange-subgraph/internal/modules/core"
	"github.com/zilstream/exchange-subgraph/internal/modules/loader"
)

// Module is the exchange indexing module. It reconstructs logical
// mints, burns, and swaps from raw pair events, keeps pool and token
// state current, derives USD prices through the whitelist oracle, and
// maintains the day/hour rollups.
type Module struct {
	db        *database.Database
	manifest  *core.Manifest
	logger    zerolog.Logger
	rpcClient *ethclient.Client

	store  entity.Store
	oracle *PriceOracle
	tokens TokenFetcher

	factoryAddress string
	config         *Config

	handlers map[common.Hash]handlerFunc
}

// Config is the module configuration carried in the manifest context.
type Config struct {
	FactoryAddress string       `yaml:"factoryAddress"`
	RPCEndpoint    string       `yaml:"rpcEndpoint"`
	Oracle         OracleConfig `yaml:"oracle"`
}

// EventContext carries one decoded log plus the block/transaction
// context handlers need but the raw log does not hold.
type EventContext struct {
	Log       *types.Log
	Timestamp int64

	// TxFrom is the transaction origin when the host resolved it.
	// Handlers that need an originator fall back to the event sender.
	TxFrom string
}

type handlerFunc func(ctx context.Context, ec *EventContext) error

// NewModule loads the exchange manifest and builds the module.
func NewModule(logger zerolog.Logger) (*Module, error) {
	manifestLoader := loader.NewManifestLoader(logger)
	manifest, err := manifestLoader.LoadFromFile("manifests/exchange-v2.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	var config Config
	if manifest.Context != nil {
		contextBytes, _ := yaml.Marshal(manifest.Context)
		if err := yaml.Unmarshal(contextBytes, &config); err != nil {
			return nil, fmt.Errorf("failed to parse module config: %w", err)
		}
	}
	config.FactoryAddress = strings.ToLower(config.FactoryAddress)
	config.Oracle.Normalize()

	m := &Module{
		manifest:       manifest,
		logger:         logger.With().Str("module", "exchange-v2").Logger(),
		oracle:         NewPriceOracle(config.Oracle),
		factoryAddress: config.FactoryAddress,
		config:         &config,
	}
	m.registerHandlers()
	return m, nil
}

// newModuleForTest wires a module directly from its collaborators,
// bypassing manifest and database setup.
func newModuleForTest(logger zerolog.Logger, store entity.Store, oracle *PriceOracle, tokens TokenFetcher, factoryAddress string) *Module {
	m := &Module{
		logger:         logger,
		store:          store,
		oracle:         oracle,
		tokens:         tokens,
		factoryAddress: strings.ToLower(factoryAddress),
	}
	m.registerHandlers()
	return m
}

func (m *Module) registerHandlers() {
	m.handlers = map[common.Hash]handlerFunc{
		TopicPairCreated: m.handlePairCreated,
		TopicTransfer:    m.handleTransfer,
		TopicSync:        m.handleSync,
		TopicMint:        m.handleMint,
		TopicBurn:        m.handleBurn,
		TopicSwap:        m.handleSwap,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.manifest.Name
}

// Version returns the module version.
func (m *Module) Version() string {
	return m.manifest.Version
}

// Manifest returns the module manifest.
func (m *Module) Manifest() *core.Manifest {
	return m.manifest
}

// SetRPCClient sets the RPC client used for token metadata and block
// timestamp fallback.
func (m *Module) SetRPCClient(client *ethclient.Client) {
	m.rpcClient = client
	if m.tokens == nil && client != nil {
		m.tokens = NewERC20Fetcher(client)
	}
}

// Initialize connects the module to its database-backed entity store.
func (m *Module) Initialize(ctx context.Context, db *database.Database) error {
	m.db = db
	m.store = database.NewEntityStore(db.Pool())

	if m.rpcClient == nil && m.config != nil && m.config.RPCEndpoint != "" {
		client, err := ethclient.Dial(m.config.RPCEndpoint)
		if err != nil {
			m.logger.Warn().Err(err).Msg("Failed to connect to RPC for token metadata fetching")
		} else {
			m.rpcClient = client
			m.logger.Info().Str("endpoint", m.config.RPCEndpoint).Msg("Connected to RPC for token metadata")
		}
	}
	if m.tokens == nil && m.rpcClient != nil {
		m.tokens = NewERC20Fetcher(m.rpcClient)
	}

	m.logger.Info().
		Str("factory", m.factoryAddress).
		Int("whitelist", len(m.oracle.config.Whitelist)).
		Msg("Exchange module initialized")
	return nil
}

// HandleEvent processes a single event log in chain order.
func (m *Module) HandleEvent(ctx context.Context, log *types.Log) error {
	if len(log.Topics) == 0 {
		return nil
	}

	handler, exists := m.handlers[log.Topics[0]]
	if !exists {
		return nil
	}

	ec := &EventContext{
		Log:       log,
		Timestamp: m.blockTimestamp(ctx, log.BlockNumber),
	}

	if err := handler(ctx, ec); err != nil {
		m.logger.Error().
			Err(err).
			Str("event_sig", log.Topics[0].Hex()).
			Str("address", log.Address.Hex()).
			Uint64("block", log.BlockNumber).
			Msg("Handler failed")
		return err
	}

	m.updateModuleState(ctx, log.BlockNumber, "active")
	return nil
}

// blockTimestamp fetches a block timestamp (seconds), preferring the
// local blocks table and falling back to an RPC header.
func (m *Module) blockTimestamp(ctx context.Context, blockNumber uint64) int64 {
	if m.db != nil {
		var ts int64
		_ = m.db.Pool().QueryRow(ctx, `SELECT timestamp FROM blocks WHERE number = $1`, blockNumber).Scan(&ts)
		if ts > 0 {
			return ts
		}
	}
	if m.rpcClient != nil {
		hdr, err := m.rpcClient.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
		if err == nil && hdr != nil {
			return int64(hdr.Time)
		}
	}
	return 0
}

// GetEventFilters returns the event filters this module is interested in.
func (m *Module) GetEventFilters() []core.EventFilter {
	return []core.EventFilter{
		{Address: m.factoryAddress, Topic0: TopicPairCreated.Hex()},
		{Topic0: TopicTransfer.Hex()},
		{Topic0: TopicSync.Hex()},
		{Topic0: TopicMint.Hex()},
		{Topic0: TopicBurn.Hex()},
		{Topic0: TopicSwap.Hex()},
	}
}

// GetStartBlock returns the block number to start indexing from.
func (m *Module) GetStartBlock() uint64 {
	if len(m.manifest.DataSources) > 0 && m.manifest.DataSources[0].Source.StartBlock != nil {
		return *m.manifest.DataSources[0].Source.StartBlock
	}
	return 0
}

// Backfill replays stored event logs through HandleEvent in
// block/transaction/log order.
func (m *Module) Backfill(ctx context.Context, fromBlock, toBlock uint64) error {
	m.logger.Info().
		Uint64("from", fromBlock).
		Uint64("to", toBlock).
		Msg("Starting exchange backfill")

	query := `
		SELECT block_number, block_hash, transaction_hash, transaction_index,
		       log_index, address, topics, data, removed
		FROM event_logs
		WHERE block_number >= $1 AND block_number <= $2
		  AND (
		    address = $3 OR
		    topics->0 IN ($4, $5, $6, $7, $8)
		  )
		ORDER BY block_number, transaction_index, log_index`

	rows, err := m.db.Pool().Query(ctx, query,
		fromBlock, toBlock,
		m.factoryAddress,
		`"`+TopicTransfer.Hex()+`"`,
		`"`+TopicSync.Hex()+`"`,
		`"`+TopicMint.Hex()+`"`,
		`"`+TopicBurn.Hex()+`"`,
		`"`+TopicSwap.Hex()+`"`,
	)
	if err != nil {
		return fmt.Errorf("failed to query events for backfill: %w", err)
	}
	defer rows.Close()

	processed := 0
	for rows.Next() {
		var logData LogData
		if err := rows.Scan(
			&logData.BlockNumber,
			&logData.BlockHash,
			&logData.TransactionHash,
			&logData.TransactionIndex,
			&logData.LogIndex,
			&logData.Address,
			&logData.Topics,
			&logData.Data,
			&logData.Removed,
		); err != nil {
			return fmt.Errorf("failed to scan log data: %w", err)
		}

		log, err := logData.ToEthereumLog()
		if err != nil {
			m.logger.Warn().Err(err).Msg("Failed to convert log data, skipping")
			continue
		}

		if err := m.HandleEvent(ctx, log); err != nil {
			m.logger.Error().
				Err(err).
				Uint64("block", log.BlockNumber).
				Str("tx", log.TxHash.Hex()).
				Msg("Failed to process event during backfill")
			continue
		}
		processed++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating over backfill results: %w", err)
	}

	m.logger.Info().
		Uint64("from", fromBlock).
		Uint64("to", toBlock).
		Int("processed", processed).
		Msg("Completed exchange backfill")
	return nil
}

// GetSyncState returns the last processed block for this module.
func (m *Module) GetSyncState(ctx context.Context) (uint64, error) {
	var lastBlock uint64
	query := `SELECT last_processed_block FROM module_state WHERE module_name = $1`

	err := m.db.Pool().QueryRow(ctx, query, m.Name()).Scan(&lastBlock)
	if err != nil {
		return 0, fmt.Errorf("failed to get sync state: %w", err)
	}
	return lastBlock, nil
}

// UpdateSyncState updates the last processed block for this module.
func (m *Module) UpdateSyncState(ctx context.Context, blockNumber uint64) error {
	query := `
		UPDATE module_state
		SET last_processed_block = $2, updated_at = CURRENT_TIMESTAMP
		WHERE module_name = $1`

	if _, err := m.db.Pool().Exec(ctx, query, m.Name(), blockNumber); err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}

func (m *Module) updateModuleState(ctx context.Context, blockNumber uint64, status string) {
	if m.db == nil {
		return
	}
	query := `
		UPDATE module_state
		SET last_processed_block = GREATEST(last_processed_block, $2),
		    status = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE module_name = $1`

	if _, err := m.db.Pool().Exec(ctx, query, m.Name(), blockNumber, status); err != nil {
		m.logger.Error().
			Err(err).
			Uint64("block", blockNumber).
			Str("status", status).
			Msg("Failed to update module state")
	}
}

// LogData is a raw event log row from the event_logs table.
type LogData struct {
	BlockNumber      uint64 `db:"block_number"`
	BlockHash        string `db:"block_hash"`
	TransactionHash  string `db:"transaction_hash"`
	TransactionIndex uint   `db:"transaction_index"`
	LogIndex         uint   `db:"log_index"`
	Address          string `db:"address"`
	Topics           []byte `db:"topics"` // JSON
	Data             string `db:"data"`
	Removed          bool   `db:"removed"`
}

// ToEthereumLog converts a stored log row to types.Log.
func (ld *LogData) ToEthereumLog() (*types.Log, error) {
	var topicStrings []string
	if err := yaml.Unmarshal(ld.Topics, &topicStrings); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}

	topics := make([]common.Hash, len(topicStrings))
	for i, topic := range topicStrings {
		topics[i] = common.HexToHash(topic)
	}

	return &types.Log{
		Address:     common.HexToAddress(ld.Address),
		Topics:      topics,
		Data:        common.FromHex(ld.Data),
		BlockNumber: ld.BlockNumber,
		TxHash:      common.HexToHash(ld.TransactionHash),
		TxIndex:     ld.TransactionIndex,
		BlockHash:   common.HexToHash(ld.BlockHash),
		Index:       ld.LogIndex,
		Removed:     ld.Removed,
	}, nil
}
