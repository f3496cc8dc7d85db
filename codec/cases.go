package codec

import "github.com/warpstreamlabs/avroregistry/internal/casepipe"

// encodeCases and decodeCases are the ordered case lists codec.go's
// encodeBuilder/decodeBuilder run against every (schema, type) pair. Kinds
// are mutually exclusive, so declaration order does not affect dispatch
// here, but the case-pipeline shape (rather than a bare switch) keeps this
// package structurally aligned with schemabuilder's reflection pipeline.
//
// These are built by functions (rather than package-level vars) because
// each case's Build closure calls back into encodeState.build/decodeState.build,
// which in turn needs the full case list: a package-level var here would
// create an initialization cycle.
func encodeCases() []casepipe.Case[buildInput, EncodeFunc, *encodeState] {
	return []casepipe.Case[buildInput, EncodeFunc, *encodeState]{
		nullEncodeCase(),
		booleanEncodeCase(),
		integerEncodeCase(),
		floatEncodeCase(),
		doubleEncodeCase(),
		bytesEncodeCase(),
		stringEncodeCase(),
		arrayEncodeCase(),
		mapEncodeCase(),
		unionEncodeCase(),
		fixedEncodeCase(),
		enumEncodeCase(),
		recordEncodeCase(),
	}
}

func decodeCases() []casepipe.Case[buildInput, DecodeFunc, *decodeState] {
	return []casepipe.Case[buildInput, DecodeFunc, *decodeState]{
		nullDecodeCase(),
		booleanDecodeCase(),
		integerDecodeCase(),
		floatDecodeCase(),
		doubleDecodeCase(),
		bytesDecodeCase(),
		stringDecodeCase(),
		arrayDecodeCase(),
		mapDecodeCase(),
		unionDecodeCase(),
		fixedDecodeCase(),
		enumDecodeCase(),
		recordDecodeCase(),
	}
}
