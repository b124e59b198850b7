/*
Package chain defines the Decoder contract shared by the chain families and the Decoders
collection the parser selects from.

# Families

Every subpackage implements one family:

  - evm: RLP encoded legacy, access list and dynamic fee transactions
  - solana: legacy and versioned messages
  - sui: BCS TransactionData and SenderSignedData
  - bitcoin: serialized wire transactions
  - tron: protobuf raw transactions
  - aptos: BCS RawTransaction

A decoder splits the transaction into instructions and hands each to its dispatcher:

	dec, err := evm.NewDecoder(lggr)
	if err != nil {
		return err // a misconfigured visualizer table fails here, at startup
	}
	decoders, err := chain.NewDecoders(dec)
	...
	p, err := dec.Decode(ctx, chain.Request{Raw: raw, Registry: reg})

The resulting payload always ends with the Raw Data field and carries the digest of the
parameters the payload does not display.
*/
package chain
