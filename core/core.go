// Package core has core logic for decoding, ingestion, outcome
// classification and yield analytics.
package core

import "github.com/mfglab/yieldline/internal/contract"

// ExecutorFunc defines the function signature for executing the different
// pipeline commands against the configured stores.
type ExecutorFunc func(cfg *contract.Config, mgr contract.StoreManager) error
