// Package codec builds a pair of pure encode/decode functions for a
// (schema.Schema, reflect.Type) pair and implements the Avro binary wire
// format: primitive framing, array/map block framing, union member
// resolution, enum symbol indexing, record field ordering, and the
// decimal/uuid/temporal/duration logical-type hooks.
package codec

import (
	"reflect"
	"sync"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// EncodeFunc writes v's Avro binary encoding to w. Built EncodeFuncs are
// pure and safe to call concurrently from multiple goroutines against
// independent Writers.
type EncodeFunc func(w *Writer, v any) error

// DecodeFunc reads one Avro-encoded value from r. Built DecodeFuncs are
// pure and safe to call concurrently from multiple goroutines against
// independent Readers.
type DecodeFunc func(r *Reader) (any, error)

// Config carries build-time tuning for the codec builder. It is currently
// empty but kept as a distinct type (rather than threading bare nils) so
// new knobs (e.g. a future max-depth guard) do not change BuildEncoder's
// signature.
type Config struct{}

type buildInput struct {
	schema schema.Schema
	typ    reflect.Type
}

type buildCtx struct {
	cfg *Config
}

//------------------------------------------------------------------------------
// encode side

type encodeState struct {
	ctx  buildCtx
	memo *casepipe.Memo[buildInput, EncodeFunc]
}

// BuildEncoder builds a pure encoder for values of type t under schema s.
// t may be nil, in which case the encoder operates on Go's "native"
// representation for s's Kind (bool, int64, float32/64, []byte, string,
// []any, map[string]any) — the representation DecodeFunc produces when its
// own target type is nil.
func BuildEncoder(s schema.Schema, t reflect.Type, cfg *Config) (EncodeFunc, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	es := &encodeState{ctx: buildCtx{cfg: cfg}, memo: casepipe.NewMemo[buildInput, EncodeFunc]()}
	return es.build(s, t)
}

// BuildEncoderFor is a typed convenience wrapper over BuildEncoder.
func BuildEncoderFor[T any](s schema.Schema, cfg *Config) (EncodeFunc, error) {
	var zero T
	return BuildEncoder(s, reflect.TypeOf(zero), cfg)
}

func (es *encodeState) build(s schema.Schema, t reflect.Type) (EncodeFunc, error) {
	key := buildInput{schema: s, typ: t}
	if fn, ok := es.memo.Load(key); ok {
		return fn, nil
	}
	var final EncodeFunc
	placeholder := EncodeFunc(func(w *Writer, v any) error { return final(w, v) })
	es.memo.Store(key, placeholder)

	fn, err := getEncodeBuilder().Run(key, es, describeBuild(s, t))
	if err != nil {
		return nil, err
	}
	final = fn
	es.memo.Store(key, fn)
	return fn, nil
}

var (
	encodeBuilderOnce sync.Once
	encodeBuilderVal  *casepipe.Builder[buildInput, EncodeFunc, *encodeState]
)

// getEncodeBuilder lazily constructs the encode builder from encodeCases.
// Deferring construction to first use (rather than a package-level var)
// avoids an initialization cycle: encodeCases' case Build funcs close over
// encodeState.build, which otherwise refers back to encodeCases itself.
func getEncodeBuilder() *casepipe.Builder[buildInput, EncodeFunc, *encodeState] {
	encodeBuilderOnce.Do(func() {
		encodeBuilderVal = casepipe.NewBuilder(encodeCases()...)
	})
	return encodeBuilderVal
}

//------------------------------------------------------------------------------
// decode side

type decodeState struct {
	ctx  buildCtx
	memo *casepipe.Memo[buildInput, DecodeFunc]
}

// BuildDecoder builds a pure decoder producing values of type t (or, if t
// is nil, Avro's "native" Go representation) from Avro binary encodings of
// schema s.
func BuildDecoder(s schema.Schema, t reflect.Type, cfg *Config) (DecodeFunc, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	ds := &decodeState{ctx: buildCtx{cfg: cfg}, memo: casepipe.NewMemo[buildInput, DecodeFunc]()}
	return ds.build(s, t)
}

// BuildDecoderFor is a typed convenience wrapper over BuildDecoder.
func BuildDecoderFor[T any](s schema.Schema, cfg *Config) (DecodeFunc, error) {
	var zero T
	return BuildDecoder(s, reflect.TypeOf(zero), cfg)
}

func (ds *decodeState) build(s schema.Schema, t reflect.Type) (DecodeFunc, error) {
	key := buildInput{schema: s, typ: t}
	if fn, ok := ds.memo.Load(key); ok {
		return fn, nil
	}
	var final DecodeFunc
	placeholder := DecodeFunc(func(r *Reader) (any, error) { return final(r) })
	ds.memo.Store(key, placeholder)

	fn, err := getDecodeBuilder().Run(key, ds, describeBuild(s, t))
	if err != nil {
		return nil, err
	}
	final = fn
	ds.memo.Store(key, fn)
	return fn, nil
}

var (
	decodeBuilderOnce sync.Once
	decodeBuilderVal  *casepipe.Builder[buildInput, DecodeFunc, *decodeState]
)

// getDecodeBuilder lazily constructs the decode builder; see
// getEncodeBuilder for why this can't be a package-level var.
func getDecodeBuilder() *casepipe.Builder[buildInput, DecodeFunc, *decodeState] {
	decodeBuilderOnce.Do(func() {
		decodeBuilderVal = casepipe.NewBuilder(decodeCases()...)
	})
	return decodeBuilderVal
}

func describeBuild(s schema.Schema, t reflect.Type) string {
	kind := "<nil>"
	if s != nil {
		kind = s.Kind().String()
	}
	typ := "<nil>"
	if t != nil {
		typ = t.String()
	}
	return kind + "/" + typ
}
