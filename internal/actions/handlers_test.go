package actions

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kelsos/fundme/internal/chain"
	"github.com/kelsos/fundme/internal/config"
	"github.com/kelsos/fundme/internal/contract"
	"github.com/kelsos/fundme/internal/models"
	"github.com/kelsos/fundme/internal/wallet"
)

var (
	account      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	txHash       = common.HexToHash("0xfeed")
)

type fakeSession struct {
	mu           sync.Mutex
	accountsErr  error
	accounts     []common.Address
	requestCalls int
	sendCalls    int
	sendErr      error
	sent         []models.TransactionRequest
}

func (s *fakeSession) RequestAccounts(context.Context) ([]common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestCalls++
	return s.accounts, s.accountsErr
}

func (s *fakeSession) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(31337), nil
}

func (s *fakeSession) SendTransaction(_ context.Context, req models.TransactionRequest) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendCalls++
	if s.sendErr != nil {
		return common.Hash{}, s.sendErr
	}
	s.sent = append(s.sent, req)
	return txHash, nil
}

type fakeReader struct {
	callErr error
	balance *big.Int
}

func (r *fakeReader) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, r.callErr
}

func (r *fakeReader) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 30000, nil
}

func (r *fakeReader) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	if r.balance == nil {
		return nil, errors.New("connection refused")
	}
	return r.balance, nil
}

func (r *fakeReader) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

type fakeProvider struct {
	mu     sync.Mutex
	conn   *wallet.Connection
	err    error
	detect int
}

func (p *fakeProvider) Detect(context.Context) (*wallet.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detect++
	if p.err != nil {
		return nil, p.err
	}
	return p.conn, nil
}

type fixture struct {
	session  *fakeSession
	reader   *fakeReader
	provider *fakeProvider
	handlers *Handlers
	states   []State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	parsed, err := contract.LoadABI("")
	if err != nil {
		t.Fatalf("load abi: %v", err)
	}

	f := &fixture{
		session: &fakeSession{accounts: []common.Address{account}},
		reader:  &fakeReader{balance: big.NewInt(0)},
	}
	f.provider = &fakeProvider{conn: &wallet.Connection{Session: f.session, Reader: f.reader}}
	f.handlers = New(
		f.provider,
		chain.NewResolver(config.NewConfig()),
		contract.NewGateway(contractAddr, parsed),
		WithObserver(func(_ Action, s State) { f.states = append(f.states, s) }),
	)
	return f
}

func (f *fixture) withoutProvider() {
	f.provider.err = wallet.ErrProviderUnavailable
}

func TestFundRejectsInvalidAmountsBeforeWallet(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "0", "0.0", "-1", "-0.5", "1e18", "NaN", "Infinity"} {
		f := newFixture(t)
		outcome := f.handlers.Fund(context.Background(), input)

		if outcome.Success {
			t.Fatalf("%q: expected failure", input)
		}
		if outcome.Text != "Please enter a valid ETH amount" {
			t.Fatalf("%q: unexpected text %q", input, outcome.Text)
		}
		if outcome.Kind() != KindActionFailed || outcome.Donated() {
			t.Fatalf("%q: unexpected outcome %+v", input, outcome)
		}
		if f.provider.detect != 0 || f.session.requestCalls != 0 {
			t.Fatalf("%q: wallet must not be touched", input)
		}
		if len(f.states) != 0 {
			t.Fatalf("%q: no state transitions expected, got %v", input, f.states)
		}
	}
}

func TestFundSuccess(t *testing.T) {
	f := newFixture(t)

	outcome := f.handlers.Fund(context.Background(), " 0.05 ")
	if !outcome.Success {
		t.Fatalf("expected success, got %v", outcome.Err)
	}
	if !strings.Contains(outcome.Text, "0.05 ETH") {
		t.Fatalf("unexpected text %q", outcome.Text)
	}
	if outcome.Wei.String() != "50000000000000000" || outcome.Amount != "0.05" || !outcome.Donated() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.TxHash != txHash || outcome.Account != account {
		t.Fatalf("unexpected hash/account %s %s", outcome.TxHash.Hex(), outcome.Account.Hex())
	}

	if len(f.session.sent) != 1 {
		t.Fatalf("expected one submission")
	}
	req := f.session.sent[0]
	if req.Method != contract.MethodFund || req.Value.String() != "50000000000000000" || req.Network.DefaultRPC() != config.DefaultChainRPC {
		t.Fatalf("unexpected request %+v", req)
	}

	want := []State{StateAwaitingProviderCheck, StateAwaitingWalletResponse, StateAwaitingChainResolution, StateAwaitingGateway, StateIdle}
	if len(f.states) != len(want) {
		t.Fatalf("unexpected transitions %v", f.states)
	}
	for i := range want {
		if f.states[i] != want[i] {
			t.Fatalf("unexpected transitions %v", f.states)
		}
	}
}

func TestFundSimulationFailure(t *testing.T) {
	f := newFixture(t)
	f.reader.callErr = errors.New("execution reverted: You need to spend more ETH!")

	outcome := f.handlers.Fund(context.Background(), "0.001")
	if outcome.Success || outcome.Donated() {
		t.Fatalf("expected failure")
	}
	if outcome.Text != "Transaction failed. Please try again." {
		t.Fatalf("unexpected text %q", outcome.Text)
	}

	var txErr *contract.TransactionError
	if !errors.As(outcome.Err, &txErr) {
		t.Fatalf("expected TransactionError in chain, got %v", outcome.Err)
	}
	if f.session.sendCalls != 0 {
		t.Fatalf("a reverted simulation must not be sent")
	}
	if f.states[len(f.states)-1] != StateIdle {
		t.Fatalf("handler must return to idle")
	}
}

func TestFundUserRejectsSignature(t *testing.T) {
	f := newFixture(t)
	f.session.sendErr = errors.New("User denied transaction signature")

	outcome := f.handlers.Fund(context.Background(), "1")
	if outcome.Success || outcome.Kind() != KindActionFailed {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestFundWithoutProvider(t *testing.T) {
	f := newFixture(t)
	f.withoutProvider()

	outcome := f.handlers.Fund(context.Background(), "0.05")
	if outcome.Kind() != KindProviderUnavailable || !outcome.PromptInstall() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !errors.Is(outcome.Err, wallet.ErrProviderUnavailable) {
		t.Fatalf("cause must be preserved")
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)

	outcome := f.handlers.Withdraw(context.Background())
	if !outcome.Success || outcome.Text != "Withdrawal completed successfully!" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if f.session.sent[0].HasValue() || f.session.sent[0].Method != contract.MethodWithdraw {
		t.Fatalf("withdraw must carry no value: %+v", f.session.sent[0])
	}
}

func TestWithdrawRejectedByContract(t *testing.T) {
	f := newFixture(t)
	f.reader.callErr = errors.New("execution reverted: FundMe__NotOwner()")

	outcome := f.handlers.Withdraw(context.Background())
	if outcome.Success || outcome.Text != "Withdrawal failed. Please try again." {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestWithdrawWithoutProviderPromptsInstall(t *testing.T) {
	f := newFixture(t)
	f.withoutProvider()

	outcome := f.handlers.Withdraw(context.Background())
	if !strings.Contains(strings.ToLower(outcome.Text), "wallet not detected") {
		t.Fatalf("unexpected text %q", outcome.Text)
	}
	if !outcome.PromptInstall() {
		t.Fatalf("withdraw without provider should prompt install")
	}
}

func TestGetBalanceIsReadOnly(t *testing.T) {
	f := newFixture(t)
	f.reader.balance, _ = new(big.Int).SetString("2500000000000000000", 10)

	outcome := f.handlers.GetBalance(context.Background())
	if !outcome.Success || outcome.Text != "Contract balance: 2.5 ETH" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if f.session.requestCalls != 0 || f.session.sendCalls != 0 {
		t.Fatalf("balance must not request accounts or signatures")
	}
}

func TestGetBalanceWhileDisconnected(t *testing.T) {
	f := newFixture(t)
	f.session.accountsErr = errors.New("not connected")

	outcome := f.handlers.GetBalance(context.Background())
	if !outcome.Success {
		t.Fatalf("balance should not need a connected account: %v", outcome.Err)
	}
}

func TestGetBalanceFailures(t *testing.T) {
	f := newFixture(t)
	f.reader.balance = nil

	outcome := f.handlers.GetBalance(context.Background())
	if outcome.Success || outcome.Text != "Failed to fetch balance" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	var queryErr *contract.QueryError
	if !errors.As(outcome.Err, &queryErr) {
		t.Fatalf("expected QueryError, got %v", outcome.Err)
	}

	f = newFixture(t)
	f.withoutProvider()
	outcome = f.handlers.GetBalance(context.Background())
	if outcome.Kind() != KindProviderUnavailable || outcome.PromptInstall() {
		t.Fatalf("balance reports a missing provider without prompting: %+v", outcome)
	}
}

func TestConnect(t *testing.T) {
	f := newFixture(t)

	outcome := f.handlers.Connect(context.Background())
	if !outcome.Success || outcome.Text != "Wallet connected successfully!" || outcome.Account != account {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if f.session.requestCalls != 1 {
		t.Fatalf("expected one account request, got %d", f.session.requestCalls)
	}
}

func TestConnectFailures(t *testing.T) {
	f := newFixture(t)
	f.session.accountsErr = errors.New("User rejected the request.")

	outcome := f.handlers.Connect(context.Background())
	if outcome.Success || outcome.Text != "Failed to connect wallet" || outcome.PromptInstall() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	f = newFixture(t)
	f.session.accounts = nil
	outcome = f.handlers.Connect(context.Background())
	if outcome.Success || !errors.Is(outcome.Err, wallet.ErrNoAccounts) {
		t.Fatalf("no accounts should fail: %+v", outcome)
	}

	f = newFixture(t)
	f.withoutProvider()
	outcome = f.handlers.Connect(context.Background())
	if outcome.Kind() != KindProviderUnavailable || !outcome.PromptInstall() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	f = newFixture(t)
	f.provider.err = errors.New("dial tcp: connection refused")
	outcome = f.handlers.Connect(context.Background())
	if outcome.Kind() != KindActionFailed || outcome.Text != "Failed to connect wallet" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestOverlappingFundsAreNotGuarded(t *testing.T) {
	f := newFixture(t)
	f.handlers.observe = nil

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.handlers.Fund(context.Background(), "0.01")
		}()
	}
	wg.Wait()

	if f.session.sendCalls != 2 {
		t.Fatalf("expected two independent submissions, got %d", f.session.sendCalls)
	}
}

func TestPendingText(t *testing.T) {
	h := New(nil, nil, nil)
	if got := h.PendingText(ActionFund, "0.05"); got != "Processing donation of 0.05 ETH..." {
		t.Fatalf("unexpected pending text %q", got)
	}
	if got := h.PendingText(ActionConnect, ""); got != "Connecting to wallet..." {
		t.Fatalf("unexpected pending text %q", got)
	}
}
