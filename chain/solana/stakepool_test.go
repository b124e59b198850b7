package solana

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	sollib "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
)

var (
	stakePool = sollib.MustPublicKeyFromBase58("Jito4APyf642JPZPx3hGc6WWJ8zPKtRbRs4P815Awbb")
	poolMint  = sollib.MustPublicKeyFromBase58("J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn")
)

func stakePoolData(t *testing.T, tag byte, amounts ...uint64) []byte {
	t.Helper()

	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	require.NoError(t, enc.WriteUint8(tag))
	for _, a := range amounts {
		require.NoError(t, enc.WriteUint64(a, bin.LE))
	}

	return buf.Bytes()
}

func TestDecoder_StakePool(t *testing.T) {
	t.Parallel()

	var (
		authority = sollib.MustPublicKeyFromBase58("6iQKfEyhr3bZMotVkW6beNZz5CPAkiwvgV2CTje9pVSS")
		reserve   = sollib.MustPublicKeyFromBase58("BgKUXdS29YcHCFrPm5M8oLHiTzZaMDjsebggjoaQ6KFL")
		poolATA   = sollib.MustPublicKeyFromBase58("7UX2i7SucgLMQcfZ75s3VXmZZY4YRUyJN9X1RgfMoDUi")
		fees      = sollib.MustPublicKeyFromBase58("2wmVCSfPxGPjrnMMn7rchp4uaeoTqN39mXFC2zhPdri9")
	)
	depositSol := readOnly(stakePool, authority, reserve, payer, poolATA, fees, fees, poolMint,
		sollib.SystemProgramID, sollib.TokenProgramID)
	withdrawSol := readOnly(stakePool, authority, payer, poolATA, reserve, receiver, fees, poolMint,
		sollib.SysVarClockPubkey, sollib.SysVarStakeHistoryPubkey, sollib.StakeProgramID, sollib.TokenProgramID)
	depositStake := readOnly(stakePool, fees, authority, authority, receiver, reserve, reserve, poolATA, fees, fees,
		poolMint, sollib.SysVarClockPubkey, sollib.SysVarStakeHistoryPubkey, sollib.TokenProgramID, sollib.StakeProgramID)

	reg := registry.New()
	require.NoError(t, reg.RegisterToken(registry.ChainIDSolana, registry.TokenMetadata{
		Symbol: "JitoSOL", Name: "Jito Staked SOL", Standard: registry.StandardSPL, ContractAddress: poolMint.String(), Decimals: 9,
	}))

	tests := []struct {
		name       string
		give       sollib.Instruction
		giveReg    registry.Reader
		wantTitle  string
		wantFields map[string]any
	}{
		{
			name:      "deposit sol",
			give:      sollib.NewInstruction(StakePoolProgramID, depositSol, stakePoolData(t, 14, 2_500_000_000)),
			wantTitle: "Deposit SOL 2.5 SOL",
			wantFields: map[string]any{
				"Stake Pool":     payload.AddressV2{Address: stakePool.String()},
				"From":           payload.AddressV2{Address: payer.String()},
				"Pool Tokens To": payload.AddressV2{Address: poolATA.String()},
				"Amount":         payload.AmountV2{Amount: "2.5", Abbreviation: "SOL"},
			},
		},
		{
			name:      "withdraw sol of a known pool",
			give:      sollib.NewInstruction(StakePoolProgramID, withdrawSol, stakePoolData(t, 16, 1_000_000_000)),
			giveReg:   reg.Freeze(),
			wantTitle: "Withdraw SOL 1 JitoSOL",
			wantFields: map[string]any{
				"To":          payload.AddressV2{Address: receiver.String()},
				"Pool Mint":   payload.AddressV2{Address: poolMint.String(), Name: "JitoSOL"},
				"Pool Tokens": payload.AmountV2{Amount: "1", Abbreviation: "JitoSOL"},
			},
		},
		{
			name:      "withdraw sol of an unknown pool",
			give:      sollib.NewInstruction(StakePoolProgramID, withdrawSol, stakePoolData(t, 16, 1_000_000_000)),
			wantTitle: "Withdraw SOL 1000000000 pool tokens",
			wantFields: map[string]any{
				"Pool Mint":   payload.AddressV2{Address: poolMint.String()},
				"Pool Tokens": payload.AmountV2{Amount: "1000000000", Abbreviation: "pool tokens"},
			},
		},
		{
			name:      "withdraw sol with slippage",
			give:      sollib.NewInstruction(StakePoolProgramID, withdrawSol, stakePoolData(t, 26, 500_000_000, 490_000_000)),
			giveReg:   reg.Freeze(),
			wantTitle: "Withdraw SOL 0.5 JitoSOL",
			wantFields: map[string]any{
				"Pool Tokens":          payload.AmountV2{Amount: "0.5", Abbreviation: "JitoSOL"},
				"Minimum Lamports Out": payload.AmountV2{Amount: "0.49", Abbreviation: "SOL"},
			},
		},
		{
			name:      "deposit stake",
			give:      sollib.NewInstruction(StakePoolProgramID, depositStake, stakePoolData(t, 9)),
			wantTitle: "Deposit Stake",
			wantFields: map[string]any{
				"Stake Account": payload.AddressV2{Address: receiver.String()},
				"Pool Mint":     payload.AddressV2{Address: poolMint.String()},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := decode(t, serialize(t, newTx(t, tt.give)), tt.giveReg)
			_, layout := instructionAt(t, p, 0)
			assert.Equal(t, &payload.TextV2{Text: tt.wantTitle}, layout.Title)
			assert.Equal(t, &payload.TextV2{Text: "Stake Pool Program"}, layout.Subtitle)
			for label, want := range tt.wantFields {
				assert.Equal(t, want, expandedField(t, layout, label).Value, label)
			}
		})
	}
}

func TestDecoder_StakePoolMalformed(t *testing.T) {
	t.Parallel()

	accounts := readOnly(stakePool, payer, payer, payer, payer, payer, payer, poolMint, sollib.SystemProgramID, sollib.TokenProgramID)
	tests := []struct {
		name string
		give []byte
	}{
		{name: "truncated amount", give: []byte{14, 0x01, 0x02}},
		{name: "trailing bytes", give: append(stakePoolData(t, 14, 1), 0xff)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := decode(t, serialize(t, newTx(t, sollib.NewInstruction(StakePoolProgramID, accounts, tt.give))), nil)
			_, layout := instructionAt(t, p, 0)
			assert.Equal(t, &payload.TextV2{Text: "Stake Pool Program"}, layout.Title)
			assert.NotContains(t, labelsOf(layout), "Amount")
		})
	}
}
