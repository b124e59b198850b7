package parser

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/aptos"
	"github.com/smartcontractkit/visualsign-go/chain/bitcoin"
	"github.com/smartcontractkit/visualsign-go/chain/evm"
	"github.com/smartcontractkit/visualsign-go/chain/solana"
	"github.com/smartcontractkit/visualsign-go/chain/sui"
	"github.com/smartcontractkit/visualsign-go/chain/tron"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

// DecoderOptions configures the built-in decoders. Zero values select each decoder's
// default.
type DecoderOptions struct {
	// MaxCallDepth bounds nested EVM call visualization.
	MaxCallDepth int
	// SolanaGenesisHash selects the Solana cluster shown as network.
	SolanaGenesisHash string
	// SuiNetwork and TronNetwork are chain-selectors names, e.g. "sui-testnet".
	SuiNetwork  string
	TronNetwork string
	// BitcoinNetwork is a btcd network name: mainnet, testnet3, regtest or signet.
	BitcoinNetwork string
}

var bitcoinNetworks = map[string]*chaincfg.Params{
	chaincfg.MainNetParams.Name:       &chaincfg.MainNetParams,
	chaincfg.TestNet3Params.Name:      &chaincfg.TestNet3Params,
	chaincfg.RegressionNetParams.Name: &chaincfg.RegressionNetParams,
	chaincfg.SigNetParams.Name:        &chaincfg.SigNetParams,
}

// NewDecoders builds one decoder per supported chain.
func NewDecoders(lggr logger.Logger, opts DecoderOptions) (chain.Decoders, error) {
	var evmOpts []evm.Option
	if opts.MaxCallDepth > 0 {
		evmOpts = append(evmOpts, evm.WithMaxCallDepth(opts.MaxCallDepth))
	}
	var solanaOpts []solana.Option
	if opts.SolanaGenesisHash != "" {
		solanaOpts = append(solanaOpts, solana.WithGenesisHash(opts.SolanaGenesisHash))
	}
	var suiOpts []sui.Option
	if opts.SuiNetwork != "" {
		suiOpts = append(suiOpts, sui.WithNetwork(opts.SuiNetwork))
	}
	var tronOpts []tron.Option
	if opts.TronNetwork != "" {
		tronOpts = append(tronOpts, tron.WithNetwork(opts.TronNetwork))
	}
	var bitcoinOpts []bitcoin.Option
	if opts.BitcoinNetwork != "" {
		params, ok := bitcoinNetworks[opts.BitcoinNetwork]
		if !ok {
			return chain.Decoders{}, fmt.Errorf("unknown bitcoin network %q", opts.BitcoinNetwork)
		}
		bitcoinOpts = append(bitcoinOpts, bitcoin.WithNetParams(params))
	}

	evmDecoder, err := evm.NewDecoder(lggr, evmOpts...)
	if err != nil {
		return chain.Decoders{}, err
	}
	solanaDecoder, err := solana.NewDecoder(lggr, solanaOpts...)
	if err != nil {
		return chain.Decoders{}, err
	}
	suiDecoder, err := sui.NewDecoder(lggr, suiOpts...)
	if err != nil {
		return chain.Decoders{}, err
	}
	bitcoinDecoder, err := bitcoin.NewDecoder(lggr, bitcoinOpts...)
	if err != nil {
		return chain.Decoders{}, err
	}
	tronDecoder, err := tron.NewDecoder(lggr, tronOpts...)
	if err != nil {
		return chain.Decoders{}, err
	}
	aptosDecoder, err := aptos.NewDecoder(lggr)
	if err != nil {
		return chain.Decoders{}, err
	}

	return chain.NewDecoders(evmDecoder, solanaDecoder, suiDecoder, bitcoinDecoder, tronDecoder, aptosDecoder)
}
