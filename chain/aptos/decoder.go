// Package aptos decodes BCS encoded Aptos transactions and visualizes their entry functions.
package aptos

import (
	"context"
	"fmt"
	"strconv"
	"time"

	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/utils"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	PayloadType  = "AptosTx"
	DefaultTitle = "Aptos Transaction"
)

var _ chain.Decoder = (*Decoder)(nil)

// Decoder decodes Aptos transactions. The network is taken from the transaction chain id.
type Decoder struct {
	dispatcher *visualizer.Dispatcher
	lggr       logger.Logger
	extra      []visualizer.Visualizer
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithVisualizers registers additional entry function visualizers after the built-in ones.
func WithVisualizers(v ...visualizer.Visualizer) Option {
	return func(d *Decoder) { d.extra = append(d.extra, v...) }
}

// NewDecoder returns an Aptos decoder. It fails when two visualizers claim the same key.
func NewDecoder(lggr logger.Logger, opts ...Option) (*Decoder, error) {
	d := &Decoder{lggr: lggr.Named("aptos")}
	for _, opt := range opts {
		opt(d)
	}
	d.dispatcher = visualizer.NewDispatcher(append(Visualizers(), d.extra...),
		visualizer.WithLogger(d.lggr),
		visualizer.WithFallback(UnknownPayloadField),
	)
	if err := d.dispatcher.Validate(); err != nil {
		return nil, fmt.Errorf("aptos visualizers: %w", err)
	}

	return d, nil
}

// Family implements chain.Decoder.
func (d *Decoder) Family() string { return chain_selectors.FamilyAptos }

// Decode implements chain.Decoder.
func (d *Decoder) Decode(ctx context.Context, req chain.Request) (*payload.SignablePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := DecodeTransaction(req.Raw)
	if err != nil {
		return nil, err
	}
	raw := tx.Raw
	d.lggr.Debugw("decoded transaction", "signed", tx.Signed, "chainID", raw.ChainId)

	chainID := strconv.Itoa(int(raw.ChainId))
	network := utils.NetworkName(chain_selectors.FamilyAptos, chainID, "Aptos Chain "+chainID)
	sender := raw.Sender.String()
	vctx := visualizer.NewContext(visualizer.ContextParams{
		ChainID:    registry.ChainIDAptos,
		Sender:     sender,
		Registry:   req.Registry,
		Dispatcher: d.dispatcher,
	})

	sequence, err := payload.NewNumberField("Sequence Number", strconv.FormatUint(raw.SequenceNumber, 10), "")
	if err != nil {
		return nil, err
	}
	maxGas, err := payload.NewNumberField("Max Gas", strconv.FormatUint(raw.MaxGasAmount, 10), "gas units")
	if err != nil {
		return nil, err
	}
	gasPrice, err := payload.NewAmountField("Gas Unit Price", strconv.FormatUint(raw.GasUnitPrice, 10), "octas")
	if err != nil {
		return nil, err
	}

	p := payload.New(req.Title(DefaultTitle), PayloadType)
	p.Subtitle = network
	p.Append(
		payload.NewTextField("Network", network),
		payload.NewAddressField("Sender", sender, ""),
		sequence,
		maxGas,
		gasPrice,
		payload.NewTextField("Expiration", formatSeconds(raw.ExpirationTimestampSeconds)),
	)
	p.Append(d.dispatcher.DispatchAll(vctx, Instructions(tx))...)

	return chain.Finish(p, req.Raw, payload.EndorsedParams{
		"chain_id":        raw.ChainId,
		"sequence_number": raw.SequenceNumber,
		"expiration":      raw.ExpirationTimestampSeconds,
	})
}

func formatSeconds(s uint64) string {
	if s > uint64(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix()) {
		return strconv.FormatUint(s, 10)
	}

	return time.Unix(int64(s), 0).UTC().Format(time.RFC3339)
}
