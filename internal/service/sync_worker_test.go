package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/storage/memory"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSyncWorker_RunOnce_VisitsEveryWalletAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	for i := 0; i < 230; i++ {
		store.PutAccount(domain.Account{ID: fmt.Sprintf("acct-%03d", i), WalletAddressURL: "https://w/x", KeyID: "k", PrivateKeyEnc: "e"})
	}
	store.PutAccount(domain.Account{ID: "no-wallet"})

	syncer := mocks.NewMockSyncService(ctrl)
	var mu sync.Mutex
	seen := map[string]int{}
	syncer.EXPECT().SyncAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (*domain.SyncResult, error) {
			mu.Lock()
			defer mu.Unlock()
			seen[id]++
			if id == "acct-007" {
				return nil, errors.New("boom")
			}
			return &domain.SyncResult{AccountID: id}, nil
		}).Times(230)

	w := NewSyncWorker(memory.NewAccountDirectory(store), syncer, nil, config.SyncConfig{Concurrency: 8}, zerolog.Nop())
	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 230, n)
	assert.Len(t, seen, 230)
	assert.NotContains(t, seen, "no-wallet")
}

func TestSyncWorker_RunOnce_RespectsConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	for i := 0; i < 12; i++ {
		store.PutAccount(domain.Account{ID: fmt.Sprintf("a%02d", i), WalletAddressURL: "https://w/x", KeyID: "k", PrivateKeyEnc: "e"})
	}

	var inFlight, peak int32
	syncer := mocks.NewMockSyncService(ctrl)
	syncer.EXPECT().SyncAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (*domain.SyncResult, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return &domain.SyncResult{AccountID: id}, nil
		}).Times(12)

	w := NewSyncWorker(memory.NewAccountDirectory(store), syncer, nil, config.SyncConfig{Concurrency: 3}, zerolog.Nop())
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestSyncWorker_RunOnce_DirectoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	accounts.EXPECT().ListWithWallet(gomock.Any(), "", syncWorkerBatch).Return(nil, errors.New("db down"))

	w := NewSyncWorker(accounts, mocks.NewMockSyncService(ctrl), nil, config.SyncConfig{}, zerolog.Nop())
	n, err := w.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestSyncWorker_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	store.PutAccount(domain.Account{ID: "kid", WalletAddressURL: "https://w/kid", KeyID: "k", PrivateKeyEnc: "e"})

	ctx, cancel := context.WithCancel(context.Background())
	syncer := mocks.NewMockSyncService(ctrl)
	syncer.EXPECT().SyncAccount(gomock.Any(), "kid").
		DoAndReturn(func(context.Context, string) (*domain.SyncResult, error) {
			cancel()
			return &domain.SyncResult{AccountID: "kid"}, nil
		}).MinTimes(1)

	w := NewSyncWorker(memory.NewAccountDirectory(store), syncer, nil, config.SyncConfig{Interval: time.Millisecond}, zerolog.Nop())
	require.True(t, w.Enabled())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestSyncWorker_Run_RecoversGrantsFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	store.PutAccount(domain.Account{ID: "kid", WalletAddressURL: "https://w/kid", KeyID: "k", PrivateKeyEnc: "e"})

	ctx, cancel := context.WithCancel(context.Background())
	recoverer := mocks.NewMockGrantRecoverer(ctrl)
	syncer := mocks.NewMockSyncService(ctrl)
	first := recoverer.EXPECT().RecoverStalled(gomock.Any()).Return(0, errors.New("db down"))
	syncer.EXPECT().SyncAccount(gomock.Any(), "kid").
		DoAndReturn(func(context.Context, string) (*domain.SyncResult, error) {
			cancel()
			return &domain.SyncResult{AccountID: "kid"}, nil
		}).After(first)
	recoverer.EXPECT().RecoverStalled(gomock.Any()).Return(1, nil).AnyTimes()
	syncer.EXPECT().SyncAccount(gomock.Any(), "kid").Return(&domain.SyncResult{AccountID: "kid"}, nil).AnyTimes()

	w := NewSyncWorker(memory.NewAccountDirectory(store), syncer, recoverer, config.SyncConfig{Interval: time.Millisecond}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestSyncWorker_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := NewSyncWorker(mocks.NewMockAccountDirectory(ctrl), mocks.NewMockSyncService(ctrl), nil, config.SyncConfig{}, zerolog.Nop())
	assert.False(t, w.Enabled())
	w.Run(context.Background())
}
