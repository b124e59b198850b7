// Package bitcoin decodes serialized Bitcoin transactions and visualizes their outputs by
// script class.
package bitcoin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/utils"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	PayloadType  = "BitcoinTx"
	DefaultTitle = "Bitcoin Transaction"
)

var _ chain.Decoder = (*Decoder)(nil)

// Decoder decodes Bitcoin transactions.
type Decoder struct {
	dispatcher *visualizer.Dispatcher
	lggr       logger.Logger
	params     *chaincfg.Params
	extra      []visualizer.Visualizer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithNetParams selects the network addresses are encoded for. Defaults to mainnet.
func WithNetParams(params *chaincfg.Params) Option {
	return func(d *Decoder) { d.params = params }
}

// WithVisualizers registers additional output visualizers after the built-in ones.
func WithVisualizers(v ...visualizer.Visualizer) Option {
	return func(d *Decoder) { d.extra = append(d.extra, v...) }
}

// NewDecoder returns a Bitcoin decoder. It fails when two visualizers claim the same key.
func NewDecoder(lggr logger.Logger, opts ...Option) (*Decoder, error) {
	d := &Decoder{lggr: lggr.Named("bitcoin"), params: &chaincfg.MainNetParams}
	for _, opt := range opts {
		opt(d)
	}
	d.dispatcher = visualizer.NewDispatcher(append(Visualizers(), d.extra...),
		visualizer.WithLogger(d.lggr),
		visualizer.WithFallback(UnknownOutputField),
	)
	if err := d.dispatcher.Validate(); err != nil {
		return nil, fmt.Errorf("bitcoin visualizers: %w", err)
	}

	return d, nil
}

// Family implements chain.Decoder.
func (d *Decoder) Family() string { return chain.FamilyBitcoin }

// Network returns the display name of the configured network, e.g. "Bitcoin Mainnet".
func (d *Decoder) Network() string { return utils.DisplayName("bitcoin-" + d.params.Name) }

// Decode implements chain.Decoder.
func (d *Decoder) Decode(ctx context.Context, req chain.Request) (*payload.SignablePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := DecodeTransaction(req.Raw)
	if err != nil {
		return nil, err
	}
	outputs := Outputs(tx, d.params)
	d.lggr.Debugw("decoded transaction", "inputs", len(tx.TxIn), "outputs", len(outputs), "witness", tx.HasWitness())

	vctx := visualizer.NewContext(visualizer.ContextParams{
		ChainID:    registry.ChainIDBitcoin,
		Registry:   req.Registry,
		Dispatcher: d.dispatcher,
	})

	version, err := payload.NewNumberField("Version", strconv.FormatInt(int64(tx.Version), 10), "")
	if err != nil {
		return nil, err
	}
	inputs, err := inputsField(tx)
	if err != nil {
		return nil, err
	}

	network := d.Network()
	p := payload.New(req.Title(DefaultTitle), PayloadType)
	p.Subtitle = network
	p.Append(payload.NewTextField("Network", network), version, inputs)
	p.Append(d.dispatcher.DispatchAll(vctx, Instructions(outputs))...)
	p.Append(payload.NewTextField("Lock Time", lockTime(tx.LockTime)))

	return chain.Finish(p, req.Raw, endorsedParams(tx))
}

// inputsField lists the spent outpoints. Values of the spent outputs are not part of the
// transaction, so no fee is shown.
func inputsField(tx *wire.MsgTx) (payload.Field, error) {
	count, err := payload.NewNumberField("Count", strconv.Itoa(len(tx.TxIn)), "inputs")
	if err != nil {
		return payload.Field{}, err
	}
	expanded := []payload.Field{count}
	rbf := false
	for i, in := range tx.TxIn {
		expanded = append(expanded, payload.NewTextField(fmt.Sprintf("Input %d", i+1), in.PreviousOutPoint.String()))
		if in.Sequence < wire.MaxTxInSequenceNum-1 {
			rbf = true
		}
	}
	if rbf {
		expanded = append(expanded, payload.NewTextField("Replace By Fee", "Enabled"))
	}

	title := fmt.Sprintf("%d Inputs", len(tx.TxIn))
	if len(tx.TxIn) == 1 {
		title = "1 Input"
	}

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     "Inputs",
		Fallback:  title,
		Title:     title,
		Condensed: []payload.Field{count},
		Expanded:  expanded,
	}), nil
}

// lockTime renders nLockTime as a block height below the threshold and a unix time above.
func lockTime(lt uint32) string {
	switch {
	case lt == 0:
		return "None"
	case lt < txscript.LockTimeThreshold:
		return "Block " + strconv.FormatUint(uint64(lt), 10)
	default:
		return time.Unix(int64(lt), 0).UTC().Format(time.RFC3339)
	}
}

// endorsedParams binds the fields that change what is signed without being displayed in
// full: the sequences and the exact outpoints.
func endorsedParams(tx *wire.MsgTx) payload.EndorsedParams {
	sequences := make([]any, 0, len(tx.TxIn))
	prevouts := make([]any, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		sequences = append(sequences, in.Sequence)
		prevouts = append(prevouts, in.PreviousOutPoint.String())
	}

	return payload.EndorsedParams{
		"lock_time": tx.LockTime,
		"prevouts":  prevouts,
		"sequences": sequences,
		"version":   tx.Version,
	}
}
