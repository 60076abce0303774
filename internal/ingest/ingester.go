package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/zilstream/exchange-subgraph/internal/config"
	"github.com/zilstream/exchange-subgraph/internal/database"
	"github.com/zilstream/exchange-subgraph/internal/modules/core"
)

// Ingester pulls block headers and event logs from the chain and feeds
// them to the module registry. Headers land in the blocks table, logs in
// event_logs, so modules can backfill from the database later without
// touching the RPC node again.
type Ingester struct {
	cfg      *config.Config
	client   *ethclient.Client
	db       *database.Database
	registry *core.ModuleRegistry
	logger   zerolog.Logger

	// topic0 OR-set collected from the registered modules' filters
	topics []common.Hash
}

// New creates an ingester. Filters come from the modules that were
// registered before the ingester starts; address-scoped filters are
// enforced by the modules themselves.
func New(cfg *config.Config, db *database.Database, registry *core.ModuleRegistry, filters []core.EventFilter, logger zerolog.Logger) (*Ingester, error) {
	client, err := ethclient.Dial(cfg.Chain.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}

	var topics []common.Hash
	seen := make(map[common.Hash]bool)
	for _, filter := range filters {
		if filter.Topic0 == "" {
			continue
		}
		topic := common.HexToHash(filter.Topic0)
		if !seen[topic] {
			topics = append(topics, topic)
			seen[topic] = true
		}
	}

	return &Ingester{
		cfg:      cfg,
		client:   client,
		db:       db,
		registry: registry,
		logger:   logger.With().Str("component", "ingester").Logger(),
		topics:   topics,
	}, nil
}

// Close releases the RPC connection.
func (i *Ingester) Close() {
	i.client.Close()
}

// Run is the main sync loop. It resumes from the last ingested block,
// catches up in batches, and then follows the chain head. Blocks until
// the context is cancelled.
func (i *Ingester) Run(ctx context.Context) error {
	next, err := i.startBlock(ctx)
	if err != nil {
		return err
	}

	consecutiveErrors := 0
	maxConsecutiveErrors := 10

	for {
		select {
		case <-ctx.Done():
			i.logger.Info().Msg("Ingester stopped")
			return nil
		default:
		}

		latest, err := i.client.BlockNumber(ctx)
		if err != nil {
			i.logger.Error().Err(err).Msg("Failed to get latest block number")
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return fmt.Errorf("too many consecutive errors: %w", err)
			}
			sleepOrDone(ctx, 5*time.Second)
			continue
		}

		if next > latest {
			i.logger.Debug().
				Uint64("current", next-1).
				Uint64("latest", latest).
				Msg("Caught up with chain")
			sleepOrDone(ctx, i.cfg.Chain.BlockTime)
			continue
		}

		end := next + i.cfg.Ingest.BatchSize - 1
		if end > latest {
			end = latest
		}

		startTime := time.Now()
		if err := i.ProcessRange(ctx, next, end); err != nil {
			i.logger.Error().
				Err(err).
				Uint64("from", next).
				Uint64("to", end).
				Msg("Failed to process block range")

			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return fmt.Errorf("too many consecutive errors: %w", err)
			}
			sleepOrDone(ctx, 5*time.Second)
			continue
		}
		consecutiveErrors = 0

		i.logger.Info().
			Uint64("from", next).
			Uint64("to", end).
			Uint64("lag", latest-end).
			Dur("duration", time.Since(startTime)).
			Msg("Block range processed")

		next = end + 1

		// Near the head, pace ourselves to roughly one block interval.
		if latest-end < 10 {
			sleepOrDone(ctx, 500*time.Millisecond)
		}
	}
}

// ProcessRange ingests headers and logs for [from, to] and routes the
// logs to the registered modules in chain order.
func (i *Ingester) ProcessRange(ctx context.Context, from, to uint64) error {
	logs, err := i.fetchLogs(ctx, from, to)
	if err != nil {
		return err
	}

	headers, err := i.fetchHeaders(ctx, from, to)
	if err != nil {
		return err
	}

	if err := i.persist(ctx, headers, logs); err != nil {
		return err
	}

	// Verify nothing was dropped before handing logs to the modules.
	missing, err := i.db.FindMissingBlocks(ctx, from, to)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("blocks missing after ingest: %v", missing)
	}
	if err := i.db.ValidateBlockSequence(ctx, from, to); err != nil {
		return err
	}

	for idx := range logs {
		if err := i.registry.ProcessEvent(ctx, &logs[idx]); err != nil {
			return fmt.Errorf("process event at block %d log %d: %w",
				logs[idx].BlockNumber, logs[idx].Index, err)
		}
	}

	for _, name := range i.registry.ListModules() {
		if err := i.registry.UpdateModuleBlock(name, to); err != nil {
			i.logger.Error().Err(err).Str("module", name).Msg("Failed to update module block")
		}
	}

	return nil
}

func (i *Ingester) startBlock(ctx context.Context) (uint64, error) {
	last, err := i.db.GetLastBlock(ctx)
	if err != nil {
		if err == database.ErrNotFound {
			start := i.cfg.Chain.StartBlock
			i.logger.Info().Uint64("block", start).Msg("Starting from configured block")
			return start, nil
		}
		return 0, fmt.Errorf("failed to get last block: %w", err)
	}

	i.logger.Info().Uint64("block", last.Number).Msg("Resuming after last ingested block")
	return last.Number + 1, nil
}

func (i *Ingester) fetchLogs(ctx context.Context, from, to uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
	}
	if len(i.topics) > 0 {
		query.Topics = [][]common.Hash{i.topics}
	}

	logs, err := i.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs %d-%d: %w", from, to, err)
	}
	return logs, nil
}

func (i *Ingester) fetchHeaders(ctx context.Context, from, to uint64) ([]*types.Header, error) {
	headers := make([]*types.Header, 0, to-from+1)
	for number := from; number <= to; number++ {
		header, err := i.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch header %d: %w", number, err)
		}
		headers = append(headers, header)
	}
	return headers, nil
}

// persist writes headers and logs in one database transaction so a
// crash mid-range never leaves logs without their block rows.
func (i *Ingester) persist(ctx context.Context, headers []*types.Header, logs []types.Log) error {
	return i.db.Transaction(ctx, func(tx pgx.Tx) error {
		for _, header := range headers {
			if err := insertBlock(ctx, tx, header); err != nil {
				return err
			}
		}
		for idx := range logs {
			if err := insertEventLog(ctx, tx, &logs[idx]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertBlock(ctx context.Context, tx pgx.Tx, header *types.Header) error {
	query := `
		INSERT INTO blocks (number, hash, parent_hash, timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (number) DO UPDATE SET
			hash = EXCLUDED.hash,
			parent_hash = EXCLUDED.parent_hash,
			timestamp = EXCLUDED.timestamp`

	_, err := tx.Exec(ctx, query,
		header.Number.Uint64(),
		header.Hash().Hex(),
		header.ParentHash.Hex(),
		int64(header.Time),
	)
	if err != nil {
		return fmt.Errorf("failed to insert block %d: %w", header.Number.Uint64(), err)
	}
	return nil
}

func insertEventLog(ctx context.Context, tx pgx.Tx, log *types.Log) error {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		INSERT INTO event_logs (block_number, block_hash, transaction_hash, transaction_index,
		                        log_index, address, topics, data, removed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (block_number, transaction_index, log_index) DO UPDATE SET
			block_hash = EXCLUDED.block_hash,
			transaction_hash = EXCLUDED.transaction_hash,
			removed = EXCLUDED.removed`

	_, err = tx.Exec(ctx, query,
		log.BlockNumber,
		log.BlockHash.Hex(),
		log.TxHash.Hex(),
		int(log.TxIndex),
		int(log.Index),
		strings.ToLower(log.Address.Hex()),
		string(topicsJSON),
		common.Bytes2Hex(log.Data),
		log.Removed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event log %d-%d: %w", log.BlockNumber, log.Index, err)
	}
	return nil
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
