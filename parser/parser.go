// Package parser implements the inbound parse operation: it turns unsigned transaction
// bytes of a supported chain into a validated signable payload.
package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/smartcontractkit/visualsign-go/chain"
	"github.com/smartcontractkit/visualsign-go/chain/evm"
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
)

var (
	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrEmptyPayload     = errors.New("empty unsigned payload")
	ErrInvalidRequest   = errors.New("invalid parse request")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseRequest is one parse call.
type ParseRequest struct {
	UnsignedPayload []byte
	// Chain selects the decoder. ChainUnspecified tries each decoder in turn and keeps the
	// first payload that decodes.
	Chain Chain
	// TransactionName overrides the payload title.
	TransactionName string `validate:"omitempty,printascii,max=128"`
	Metadata        *ChainMetadata
}

// ChainMetadata is optional wallet supplied context for one request.
type ChainMetadata struct {
	// ABI describes the called contract. Ethereum only.
	ABI *ContractABI
	// Tokens is a metadata blob added to the shared registry for this request only. A token
	// the shared registry already knows with different metadata fails the request.
	Tokens *TokenMetadataBlob
}

// ContractABI is a JSON contract ABI, optionally signed over its keccak256 hash.
type ContractABI struct {
	Value     string `validate:"required,json"`
	Signature []byte `validate:"omitempty,len=65"`
}

// TokenMetadataBlob is a protobuf ChainMetadata blob and its declared SHA-256 hash.
type TokenMetadataBlob struct {
	Blob []byte `validate:"required"`
	Hash string `validate:"required"`
}

// ParsedTransaction is the result of a parse call.
type ParsedTransaction struct {
	// Chain is the chain that decoded the payload, detected when the request left it
	// unspecified.
	Chain   Chain
	Payload *payload.SignablePayload
	// JSON is the canonical, charset validated payload encoding.
	JSON                 string
	EndorsedParamsDigest string
}

// Parser routes requests to the decoder of their chain.
type Parser struct {
	decoders  *chain.Decoders
	registry  *registry.Holder
	abiSigner string
	lggr      logger.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithDecoders replaces the built-in decoders.
func WithDecoders(d chain.Decoders) Option {
	return func(p *Parser) { p.decoders = &d }
}

// WithRegistry sets the shared registry. Requests read its current snapshot.
func WithRegistry(h *registry.Holder) Option {
	return func(p *Parser) { p.registry = h }
}

// WithABISigner requires every request ABI to be signed by the given Ethereum address.
func WithABISigner(address string) Option {
	return func(p *Parser) { p.abiSigner = address }
}

// New returns a Parser. Without WithDecoders it uses NewDecoders with default options.
func New(lggr logger.Logger, opts ...Option) (*Parser, error) {
	p := &Parser{lggr: lggr.Named("parser")}
	for _, opt := range opts {
		opt(p)
	}
	if p.decoders == nil {
		d, err := NewDecoders(lggr, DecoderOptions{})
		if err != nil {
			return nil, err
		}
		p.decoders = &d
	}
	if p.registry == nil {
		p.registry = registry.NewHolder(nil)
	}
	if p.abiSigner != "" {
		if _, err := evm.ParseAddress(p.abiSigner); err != nil {
			return nil, fmt.Errorf("abi signer: %w", err)
		}
	}

	return p, nil
}

// Registry returns the holder of the shared registry.
func (p *Parser) Registry() *registry.Holder { return p.registry }

// Parse decodes req.UnsignedPayload. Structural decode errors, invalid metadata and
// payloads that fail validation fail the request; no partial payload is returned.
func (p *Parser) Parse(ctx context.Context, req ParseRequest) (ParsedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return ParsedTransaction{}, err
	}

	lggr := p.lggr.With("requestID", uuid.NewString(), "chain", req.Chain.String())
	lggr.Debugw("parse request", "payloadLen", len(req.UnsignedPayload), "hasMetadata", req.Metadata != nil)

	chains, err := p.candidates(req.Chain)
	if err != nil {
		return ParsedTransaction{}, err
	}
	if len(req.UnsignedPayload) == 0 {
		return ParsedTransaction{}, ErrEmptyPayload
	}
	if err := validate.Struct(req); err != nil {
		return ParsedTransaction{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	shared := p.registry.Load()
	creq := chain.Request{
		Raw:             req.UnsignedPayload,
		Registry:        shared,
		TransactionName: req.TransactionName,
	}
	if md := req.Metadata; md != nil {
		if md.Tokens != nil {
			scoped := registry.New()
			if err := scoped.LoadMetadataBlob(md.Tokens.Blob, md.Tokens.Hash); err != nil {
				return ParsedTransaction{}, fmt.Errorf("request token metadata: %w", err)
			}
			if err := scoped.CheckConflicts(shared); err != nil {
				return ParsedTransaction{}, fmt.Errorf("request token metadata: %w", err)
			}
			lggr.Debugw("layered request token metadata", "tokens", scoped.Len())
			creq.Registry = registry.Layered(shared, scoped.Freeze())
		}
		if md.ABI != nil {
			abiJSON, err := p.contractABI(lggr, req.Chain, md.ABI)
			if err != nil {
				return ParsedTransaction{}, err
			}
			creq.ContractABI = abiJSON
		}
	}

	sp, decoded, err := p.decode(ctx, lggr, chains, creq)
	if err != nil {
		lggr.Debugw("decode failed", "err", err)
		return ParsedTransaction{}, err
	}
	out, err := sp.ToValidatedJSON()
	if err != nil {
		return ParsedTransaction{}, err
	}
	lggr.Debugw("parsed transaction", "decodedAs", decoded.String(), "fields", len(sp.Fields), "digest", sp.EndorsedParamsDigest)

	return ParsedTransaction{
		Chain:                decoded,
		Payload:              sp,
		JSON:                 out,
		EndorsedParamsDigest: sp.EndorsedParamsDigest,
	}, nil
}

// candidates returns the chains whose decoders may decode a request for c: c itself, or
// every configured chain in detection order when c is unspecified.
func (p *Parser) candidates(c Chain) ([]Chain, error) {
	if c != ChainUnspecified {
		family, ok := c.Family()
		if !ok || !p.decoders.Exists(family) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, c)
		}

		return []Chain{c}, nil
	}

	var out []Chain
	for _, d := range detectOrder {
		if family, _ := d.Family(); p.decoders.Exists(family) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no decoder configured to detect the chain", ErrUnsupportedChain)
	}

	return out, nil
}

// decode returns the payload of the first candidate whose decoder accepts the request. A
// single candidate's error is returned unchanged.
func (p *Parser) decode(ctx context.Context, lggr logger.Logger, chains []Chain, creq chain.Request) (*payload.SignablePayload, Chain, error) {
	var errs []error
	for _, c := range chains {
		if err := ctx.Err(); err != nil {
			return nil, c, err
		}
		family, _ := c.Family()
		dec, err := p.decoders.Get(family)
		if err != nil {
			return nil, c, fmt.Errorf("%w: %w", ErrUnsupportedChain, err)
		}
		sp, err := dec.Decode(ctx, creq)
		if err == nil {
			return sp, c, nil
		}
		if len(chains) == 1 {
			return nil, c, err
		}
		lggr.Debugw("payload rejected while detecting chain", "candidate", c.String(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", c, err))
	}

	return nil, ChainUnspecified, fmt.Errorf("%w: no decoder accepted the payload: %w", ErrUnsupportedChain, errors.Join(errs...))
}

func (p *Parser) contractABI(lggr logger.Logger, c Chain, a *ContractABI) (string, error) {
	if c != ChainEthereum {
		return "", fmt.Errorf("%w: contract abi is not supported for %s", ErrInvalidRequest, c)
	}
	switch {
	case p.abiSigner != "":
		if err := evm.VerifyABISignature(a.Value, a.Signature, p.abiSigner); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	case len(a.Signature) > 0:
		lggr.Warnw("abi signature not verified, no signer configured")
	}

	return a.Value, nil
}
