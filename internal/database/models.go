package database

import "time"

// Block is an ingested block header. Only the fields the event pipeline
// needs are kept: the number for ordering, the hashes for gap and
// sequence checks, and the timestamp for rollup bucketing.
type Block struct {
	Number     uint64    `db:"number"`
	Hash       string    `db:"hash"`
	ParentHash string    `db:"parent_hash"`
	Timestamp  int64     `db:"timestamp"`
	CreatedAt  time.Time `db:"created_at"`
}

// EventLog is a raw contract event log as ingested from the chain.
type EventLog struct {
	ID               int64     `db:"id"`
	BlockNumber      uint64    `db:"block_number"`
	BlockHash        string    `db:"block_hash"`
	TransactionHash  string    `db:"transaction_hash"`
	TransactionIndex int       `db:"transaction_index"`
	LogIndex         int       `db:"log_index"`
	Address          string    `db:"address"`
	Topics           []string  `db:"topics"` // stored as JSONB
	Data             string    `db:"data"`
	Removed          bool      `db:"removed"`
	CreatedAt        time.Time `db:"created_at"`
}
