package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kelsos/fundme/internal/logger"
)

type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Result is delivered once per watched transaction
type Result struct {
	Hash    common.Hash
	Receipt *types.Receipt
	Err     error
}

// Mined reports whether the transaction was included and succeeded
func (r Result) Mined() bool {
	return r.Err == nil && r.Receipt != nil && r.Receipt.Status == types.ReceiptStatusSuccessful
}

// Tracker polls receipts of submitted transactions. Polling runs only while something is
// being watched.
type Tracker struct {
	ctx           context.Context
	reader        ReceiptReader
	pending       map[common.Hash]chan<- Result
	mu            sync.RWMutex
	pollInterval  time.Duration
	stopPolling   chan struct{}
	pollingActive bool
}

func NewTracker(ctx context.Context, reader ReceiptReader, pollInterval time.Duration) *Tracker {
	return &Tracker{
		ctx:          ctx,
		reader:       reader,
		pending:      make(map[common.Hash]chan<- Result),
		pollInterval: pollInterval,
		stopPolling:  make(chan struct{}),
	}
}

// Watch registers hash and returns a channel that receives exactly one result
func (t *Tracker) Watch(hash common.Hash) <-chan Result {
	resultChan := make(chan Result, 1)

	t.mu.Lock()
	if previous, exists := t.pending[hash]; exists {
		close(previous)
	}
	t.pending[hash] = resultChan

	if !t.pollingActive {
		t.pollingActive = true
		t.stopPolling = make(chan struct{})
		go t.poll(t.stopPolling)
	}
	t.mu.Unlock()

	logger.Debug("Watching transaction %s", hash.Hex())
	return resultChan
}

// Pending returns how many transactions are still unconfirmed
func (t *Tracker) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending)
}

func (t *Tracker) poll(stop <-chan struct{}) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.ctx.Done():
			t.Stop()
			return
		case <-ticker.C:
			t.checkPending()
		}
	}
}

func (t *Tracker) checkPending() {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.stopLocked()
		t.mu.Unlock()
		return
	}
	hashes := make([]common.Hash, 0, len(t.pending))
	for hash := range t.pending {
		hashes = append(hashes, hash)
	}
	t.mu.Unlock()

	for _, hash := range hashes {
		receipt, err := t.reader.TransactionReceipt(t.ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			continue
		}
		if err != nil {
			logger.Error("Failed to fetch receipt for %s: %v", hash.Hex(), err)
		}
		t.deliver(Result{Hash: hash, Receipt: receipt, Err: err})
	}
}

func (t *Tracker) deliver(result Result) {
	t.mu.Lock()
	resultChan, exists := t.pending[result.Hash]
	delete(t.pending, result.Hash)
	t.mu.Unlock()

	if !exists {
		return
	}
	resultChan <- result
	close(resultChan)

	logger.Debug("Transaction %s settled and removed from monitoring", result.Hash.Hex())
}

func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Tracker) stopLocked() {
	if t.pollingActive {
		close(t.stopPolling)
		t.pollingActive = false
	}
}
