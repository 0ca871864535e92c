package wallet

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/node"
	"wallet-accounting-go/internal/pricing"
	"wallet-accounting-go/internal/store"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// fakeNode is a scriptable Node for engine tests.
type fakeNode struct {
	newAddress   string
	estimatedFee btcutil.Amount
	estimateErr  error
	chainBalance btcutil.Amount
	sendTxId     string
	sendErr      error
	sendCalls    int
	incoming     []models.SubmittedTransaction
	outgoing     map[string]*models.SubmittedTransaction
	sentTo       map[string]*models.SubmittedTransaction
	height       int32
}

func (f *fakeNode) CreateReceiveAddress(ctx context.Context) (string, error) {
	return f.newAddress, nil
}

func (f *fakeNode) EstimateFee(ctx context.Context, address string, amount btcutil.Amount) (btcutil.Amount, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return f.estimatedFee, nil
}

func (f *fakeNode) ChainBalance(ctx context.Context) (btcutil.Amount, error) {
	return f.chainBalance, nil
}

func (f *fakeNode) SendToAddress(ctx context.Context, address string, amount btcutil.Amount) (string, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.sendTxId, nil
}

func (f *fakeNode) IncomingTransactions(ctx context.Context, lookBackBlocks int32) ([]models.SubmittedTransaction, error) {
	return f.incoming, nil
}

func (f *fakeNode) OutgoingTransaction(ctx context.Context, id string) (*models.SubmittedTransaction, error) {
	tx, ok := f.outgoing[id]
	if !ok {
		return nil, node.ErrTransactionNotFound
	}
	return tx, nil
}

func (f *fakeNode) FindOutgoingByAddress(ctx context.Context, address string, amount btcutil.Amount) (*models.SubmittedTransaction, error) {
	tx, ok := f.sentTo[address]
	if !ok || tx.Tokens != amount {
		return nil, node.ErrTransactionNotFound
	}
	return tx, nil
}

func (f *fakeNode) ChainHeight(ctx context.Context) (int32, error) {
	return f.height, nil
}

func testRatio(t *testing.T) pricing.PriceRatio {
	t.Helper()
	// 50_000 sats = $20.00
	ratio, err := pricing.NewPriceRatio(50000, 2000)
	if err != nil {
		t.Fatalf("NewPriceRatio failed: %v", err)
	}
	return ratio
}

func setupWallet(t *testing.T) (*Wallet, *fakeNode, *database.Service, func()) {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	fake := &fakeNode{
		newAddress:   "bcrt1qfresh",
		chainBalance: 10_000_000,
		outgoing:     make(map[string]*models.SubmittedTransaction),
	}

	w, err := NewWallet(WalletParams{
		Journal:  db,
		Accounts: db,
		Rewards:  db,
		Node:     fake,
		Price:    FixedPriceSource{Ratio: testRatio(t)},
		Config: models.WalletConfig{
			Network:          "regtest",
			MinConfirmations: 1,
			LookBackBlocks:   12,
			FunderAccountId:  "funder",
		},
	})
	if err != nil {
		t.Fatalf("NewWallet failed: %v", err)
	}

	cleanup := func() { db.Close() }
	return w, fake, db, cleanup
}

func createAccount(t *testing.T, db *database.Service, id string) {
	t.Helper()
	if _, err := db.CreateAccount(context.Background(), id, id, id+"@example.com"); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
}

// fund credits the account directly so payment tests start from a known
// balance.
func fund(t *testing.T, db *database.Service, accountId string, sats int64) {
	t.Helper()
	_, err := db.Commit(context.Background(), models.Entry{
		Metadata: models.EntryMetadata{
			Type:     store.TypeOnChainReceipt,
			Currency: store.CurrencyBTC,
			Hash:     "funding-" + accountId,
			Sats:     sats,
		},
		Legs: []models.EntryLeg{
			{AccountPath: database.CustomerPath(accountId), Debit: sats},
			{AccountPath: database.NodeAccountingPath(), Credit: sats},
		},
	})
	if err != nil {
		t.Fatalf("Failed to fund account: %v", err)
	}
}

// buildRawTx serializes a transaction paying the given amounts to p2pkh
// addresses derived from the seeds. Returns the raw bytes and the addresses
// in seed order.
func buildRawTx(t *testing.T, seeds []string, values []int64) ([]byte, []string) {
	t.Helper()

	params := &chaincfg.RegressionNetParams
	msgTx := wire.NewMsgTx(wire.TxVersion)
	msgTx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil, nil))

	var addresses []string
	for i, seed := range seeds {
		hash := make([]byte, 20)
		copy(hash, seed)
		addr, err := btcutil.NewAddressPubKeyHash(hash, params)
		if err != nil {
			t.Fatalf("Failed to build address: %v", err)
		}
		script, err := txscript.PayToAddrScript(addr)
		if err != nil {
			t.Fatalf("Failed to build script: %v", err)
		}
		msgTx.AddTxOut(wire.NewTxOut(values[i], script))
		addresses = append(addresses, addr.EncodeAddress())
	}

	var buf bytes.Buffer
	if err := msgTx.Serialize(&buf); err != nil {
		t.Fatalf("Failed to serialize transaction: %v", err)
	}
	return buf.Bytes(), addresses
}

func TestPayOnChain_RejectsNonPositiveAmount(t *testing.T) {
	w, _, db, cleanup := setupWallet(t)
	defer cleanup()
	createAccount(t, db, "alice")

	_, err := w.PayOnChain(context.Background(), PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qdest", Amount: 0,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestPayOnChain_InsufficientBalance(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 1000)
	fake.estimatedFee = 200

	_, err := w.PayOnChain(context.Background(), PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qdest", Amount: 900,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}
	if fake.sendCalls != 0 {
		t.Errorf("Expected no broadcast for rejected payment")
	}
}

func TestPayOnChain_BalanceShortfallIsNotLiquidityAlarm(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 100)

	// The node cannot cover the payment either, but the payer's shortfall
	// must be reported first: it is a user error, not an operational alarm.
	fake.estimatedFee = 500
	fake.chainBalance = 10_000

	_, err := w.PayOnChain(context.Background(), PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qexternal", Amount: 40_000,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}
	if errors.Is(err, ErrInsufficientNodeLiquidity) {
		t.Errorf("User balance shortfall must not surface as a node liquidity alarm")
	}
	if fake.sendCalls != 0 {
		t.Errorf("Expected no broadcast for rejected payment")
	}
}

func TestPayOnChain_SelfPaymentRejected(t *testing.T) {
	w, _, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "alice")
	if _, err := db.AppendReceiveAddress(ctx, "alice", "bcrt1qalice"); err != nil {
		t.Fatalf("AppendReceiveAddress failed: %v", err)
	}
	fund(t, db, "alice", 10000)

	_, err := w.PayOnChain(ctx, PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qalice", Amount: 1000,
	})
	if !errors.Is(err, ErrSelfPayment) {
		t.Errorf("Expected ErrSelfPayment, got %v", err)
	}
}

func TestPayOnChain_OnUsSettlesWithoutBroadcast(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "alice")
	createAccount(t, db, "bob")
	if _, err := db.AppendReceiveAddress(ctx, "bob", "bcrt1qbob"); err != nil {
		t.Fatalf("AppendReceiveAddress failed: %v", err)
	}
	fund(t, db, "alice", 10000)

	result, err := w.PayOnChain(ctx, PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qbob", Amount: 4000,
	})
	if err != nil {
		t.Fatalf("PayOnChain failed: %v", err)
	}
	if !result.OnUs {
		t.Errorf("Expected on-us settlement")
	}
	if result.Fee != 0 {
		t.Errorf("Expected zero fee for on-us, got %d", result.Fee)
	}
	if fake.sendCalls != 0 {
		t.Errorf("On-us payment must not broadcast")
	}

	aliceBalance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	bobBalance, _ := db.Balance(ctx, database.CustomerPath("bob"), store.CurrencyBTC)
	if aliceBalance != 6000 {
		t.Errorf("Expected alice balance 6000, got %d", aliceBalance)
	}
	if bobBalance != 4000 {
		t.Errorf("Expected bob balance 4000, got %d", bobBalance)
	}
}

func TestPayOnChain_OffPlatformUsesSettledFee(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 100_000)

	fake.estimatedFee = 500
	fake.sendTxId = "txpayment1"
	// Node settled the send cheaper than estimated.
	fake.outgoing["txpayment1"] = &models.SubmittedTransaction{
		Id: "txpayment1", Fee: 300, Tokens: 40_000, Outgoing: true,
	}

	result, err := w.PayOnChain(ctx, PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qexternal", Amount: 40_000,
	})
	if err != nil {
		t.Fatalf("PayOnChain failed: %v", err)
	}
	if result.OnUs {
		t.Errorf("Expected off-platform settlement")
	}
	if result.Fee != 300 {
		t.Errorf("Expected settled fee 300, got %d", result.Fee)
	}

	// Account is debited amount + settled fee.
	balance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	if balance != 100_000-40_300 {
		t.Errorf("Expected balance %d, got %d", 100_000-40_300, balance)
	}

	line, found, err := db.FindEntry(ctx, store.EntryQuery{
		AccountPath: database.CustomerPath("alice"),
		Type:        store.TypeOnChainPayment,
		Hash:        "txpayment1",
	})
	if err != nil || !found {
		t.Fatalf("Expected payment entry, found=%v err=%v", found, err)
	}
	if !line.Metadata.Pending {
		t.Errorf("Expected payment entry to be pending")
	}
	if line.Metadata.Fee != 300 {
		t.Errorf("Expected entry fee 300, got %d", line.Metadata.Fee)
	}
}

func TestPayOnChain_BroadcastFailureLeavesNoEntry(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 100_000)

	fake.estimatedFee = 500
	fake.sendErr = errors.New("connection refused")

	_, err := w.PayOnChain(ctx, PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qexternal", Amount: 40_000,
	})
	if err == nil {
		t.Fatalf("Expected broadcast error")
	}

	balance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	if balance != 100_000 {
		t.Errorf("Expected untouched balance 100000, got %d", balance)
	}
}

func TestPayOnChain_RecoversSendAfterTimeout(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 100_000)

	// The RPC call times out, but the wallet turns out to hold the send.
	fake.estimatedFee = 500
	fake.sendErr = context.DeadlineExceeded
	fake.sentTo = map[string]*models.SubmittedTransaction{
		"bcrt1qexternal": {Id: "txrecovered", Tokens: 40_000, Fee: 450, Outgoing: true},
	}
	fake.outgoing["txrecovered"] = fake.sentTo["bcrt1qexternal"]

	result, err := w.PayOnChain(ctx, PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qexternal", Amount: 40_000,
	})
	if err != nil {
		t.Fatalf("PayOnChain failed: %v", err)
	}
	if result.Hash != "txrecovered" {
		t.Errorf("Expected recovered tx id, got %s", result.Hash)
	}
	if result.Fee != 450 {
		t.Errorf("Expected settled fee 450, got %d", result.Fee)
	}

	balance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	if balance != 100_000-40_450 {
		t.Errorf("Expected balance %d, got %d", 100_000-40_450, balance)
	}
}

func TestPayOnChain_TimeoutWithoutMatchingSendLeavesNoEntry(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 100_000)

	fake.estimatedFee = 500
	fake.sendErr = context.DeadlineExceeded

	_, err := w.PayOnChain(ctx, PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qexternal", Amount: 40_000,
	})
	if err == nil {
		t.Fatalf("Expected broadcast error")
	}

	balance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	if balance != 100_000 {
		t.Errorf("Expected untouched balance 100000, got %d", balance)
	}
}

func TestPayOnChain_NodeLiquidityGate(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	createAccount(t, db, "alice")
	fund(t, db, "alice", 100_000)

	fake.estimatedFee = 500
	fake.chainBalance = 10_000

	_, err := w.PayOnChain(context.Background(), PayOnChainParams{
		AccountId: "alice", Address: "bcrt1qexternal", Amount: 40_000,
	})
	if !errors.Is(err, ErrInsufficientNodeLiquidity) {
		t.Errorf("Expected ErrInsufficientNodeLiquidity, got %v", err)
	}
	if fake.sendCalls != 0 {
		t.Errorf("Expected no broadcast when node lacks funds")
	}
}

func TestOnChainFeeEstimate_OnUsIsFree(t *testing.T) {
	w, fake, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "bob")
	if _, err := db.AppendReceiveAddress(ctx, "bob", "bcrt1qbob"); err != nil {
		t.Fatalf("AppendReceiveAddress failed: %v", err)
	}
	fake.estimatedFee = 500

	fee, err := w.OnChainFeeEstimate(ctx, "bcrt1qbob", 1000)
	if err != nil {
		t.Fatalf("OnChainFeeEstimate failed: %v", err)
	}
	if fee != 0 {
		t.Errorf("Expected zero fee for on-us destination, got %d", fee)
	}

	fee, err = w.OnChainFeeEstimate(ctx, "bcrt1qexternal", 1000)
	if err != nil {
		t.Fatalf("OnChainFeeEstimate failed: %v", err)
	}
	if fee != 500 {
		t.Errorf("Expected estimated fee 500, got %d", fee)
	}
}
