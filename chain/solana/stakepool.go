package solana

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// Stake pool instructions, identified by their first byte.
const (
	stakePoolDepositStake              = 9
	stakePoolWithdrawStake             = 10
	stakePoolDepositSol                = 14
	stakePoolWithdrawSol               = 16
	stakePoolDepositStakeWithSlippage  = 23
	stakePoolWithdrawStakeWithSlippage = 24
	stakePoolDepositSolWithSlippage    = 25
	stakePoolWithdrawSolWithSlippage   = 26
)

// stakePoolAmount is one u64 argument of a stake pool instruction.
type stakePoolAmount struct {
	label string
	// sol is true for lamport amounts and false for pool token amounts.
	sol bool
}

type stakePoolLayout struct {
	verb     string
	accounts []string
	// mint is the index of the pool mint account.
	mint int
	args []stakePoolAmount
}

var (
	depositStakeAccounts = []string{
		"Stake Pool", "Validator List", "Deposit Authority", "Withdraw Authority", "Stake Account",
		"Validator Stake Account", "Reserve Stake", "Pool Tokens To", "Manager Fee Account", "Referrer Fee Account", "Pool Mint",
	}
	withdrawStakeAccounts = []string{
		"Stake Pool", "Validator List", "Withdraw Authority", "Stake To Split", "Stake To Receive",
		"User Stake Authority", "User Transfer Authority", "Pool Tokens From", "Manager Fee Account", "Pool Mint",
	}
	depositSolAccounts = []string{
		"Stake Pool", "Withdraw Authority", "Reserve Stake", "From", "Pool Tokens To",
		"Manager Fee Account", "Referrer Fee Account", "Pool Mint",
	}
	withdrawSolAccounts = []string{
		"Stake Pool", "Withdraw Authority", "User Transfer Authority", "Pool Tokens From", "Reserve Stake",
		"To", "Manager Fee Account", "Pool Mint",
	}
)

var stakePoolLayouts = map[byte]stakePoolLayout{
	stakePoolDepositStake:  {verb: "Deposit Stake", accounts: depositStakeAccounts, mint: 10},
	stakePoolWithdrawStake: {verb: "Withdraw Stake", accounts: withdrawStakeAccounts, mint: 9, args: []stakePoolAmount{{label: "Pool Tokens"}}},
	stakePoolDepositSol:    {verb: "Deposit SOL", accounts: depositSolAccounts, mint: 7, args: []stakePoolAmount{{label: "Amount", sol: true}}},
	stakePoolWithdrawSol:   {verb: "Withdraw SOL", accounts: withdrawSolAccounts, mint: 7, args: []stakePoolAmount{{label: "Pool Tokens"}}},
	stakePoolDepositStakeWithSlippage: {verb: "Deposit Stake", accounts: depositStakeAccounts, mint: 10, args: []stakePoolAmount{
		{label: "Minimum Pool Tokens Out"},
	}},
	stakePoolWithdrawStakeWithSlippage: {verb: "Withdraw Stake", accounts: withdrawStakeAccounts, mint: 9, args: []stakePoolAmount{
		{label: "Pool Tokens"}, {label: "Minimum Lamports Out", sol: true},
	}},
	stakePoolDepositSolWithSlippage: {verb: "Deposit SOL", accounts: depositSolAccounts, mint: 7, args: []stakePoolAmount{
		{label: "Amount", sol: true}, {label: "Minimum Pool Tokens Out"},
	}},
	stakePoolWithdrawSolWithSlippage: {verb: "Withdraw SOL", accounts: withdrawSolAccounts, mint: 7, args: []stakePoolAmount{
		{label: "Pool Tokens"}, {label: "Minimum Lamports Out", sol: true},
	}},
}

// StakePoolVisualizer renders deposits into and withdrawals from SPL stake pools. Pool
// token amounts use the registry metadata of the pool mint when it is known.
func StakePoolVisualizer() visualizer.Visualizer {
	keys := programKeys(StakePoolProgramID,
		"09", // DepositStake
		"0a", // WithdrawStake
		"0e", // DepositSol
		"10", // WithdrawSol
		"17", // DepositStakeWithSlippage
		"18", // WithdrawStakeWithSlippage
		"19", // DepositSolWithSlippage
		"1a", // WithdrawSolWithSlippage
	)

	return visualizer.New("solana-stake-pool", keys, visualizeStakePool)
}

func visualizeStakePool(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if len(ins.Data) == 0 {
		return nil, fmt.Errorf("%w: stake pool discriminator", visualizer.ErrMissingData)
	}
	layout, ok := stakePoolLayouts[ins.Data[0]]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported stake pool instruction %d", visualizer.ErrMissingData, ins.Data[0])
	}

	fields, err := accountFields(ins, layout.accounts...)
	if err != nil {
		return nil, err
	}
	mint := ins.Accounts[layout.mint]
	if md, ok := ctx.Registry.Lookup(ctx.ChainID, mint); ok {
		fields[layout.mint] = payload.NewAddressField("Pool Mint", mint, md.Symbol)
	}

	dec := bin.NewBinDecoder(ins.Data[1:])
	summary := layout.verb
	for i, arg := range layout.args {
		n, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return nil, fmt.Errorf("%w: stake pool %s: %w", visualizer.ErrMissingData, arg.label, err)
		}
		var f payload.Field
		if arg.sol {
			f, err = amountField(arg.label, n)
		} else {
			f, err = ctx.TokenAmountField(arg.label, mint, new(big.Int).SetUint64(n), "pool tokens")
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if i == 0 {
			summary += " " + f.FallbackText
		}
	}
	if dec.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in stake pool instruction", visualizer.ErrMissingData, dec.Remaining())
	}

	return instructionLayout(ins, summary, fields...), nil
}
