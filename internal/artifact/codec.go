package artifact

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/bm25"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/vector"
)

// encMode uses Core Deterministic Encoding so the same payload always
// produces identical bytes and therefore an identical checksum.
var encMode cbor.EncMode

var decMode cbor.DecMode

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("artifact: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("artifact: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("artifact: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("artifact: zstd decoder initialization failed: " + err.Error())
	}
}

// record is the on-disk form of an index.Payload. Exactly one of the
// method-specific groups is populated.
type record struct {
	Method     string        `cbor:"method"`
	Threshold  float64       `cbor:"threshold"`
	Examples   []faq.Example `cbor:"examples"`
	Classes    []string      `cbor:"classes"`
	Vocabulary []string      `cbor:"vocabulary"`

	Vectorizer *vector.Vectorizer `cbor:"vectorizer,omitempty"`
	Matrix     []vector.Sparse    `cbor:"matrix,omitempty"`
	BM25       *bm25.Index        `cbor:"bm25,omitempty"`
	DocTokens  [][]string         `cbor:"doc_tokens,omitempty"`
}

func toRecord(p *index.Payload) record {
	rec := record{
		Method:     p.Method.String(),
		Threshold:  p.Threshold,
		Examples:   p.Examples,
		Classes:    faq.Classes(p.Examples),
		Vocabulary: p.Vocabulary(),
	}
	switch k := p.Kind.(type) {
	case *index.Vector:
		rec.Vectorizer = k.Vectorizer
		rec.Matrix = k.Matrix
	case *index.BM25:
		rec.BM25 = k.Index
		rec.DocTokens = k.DocTokens
	case *index.Boolean:
		rec.DocTokens = k.DocTokens
	}
	return rec
}

func fromRecord(rec record) (*index.Payload, error) {
	method, err := faq.ParseMethod(rec.Method)
	if err != nil {
		return nil, err
	}
	p := &index.Payload{
		Method:    method,
		Examples:  rec.Examples,
		Threshold: rec.Threshold,
	}
	switch {
	case method.IsVector():
		matrix := rec.Matrix
		if matrix == nil {
			matrix = []vector.Sparse{}
		}
		p.Kind = &index.Vector{Vectorizer: rec.Vectorizer, Matrix: matrix}
	case method == faq.MethodBM25:
		if rec.BM25 != nil && rec.BM25.DocTermFreqs == nil {
			rec.BM25.DocTermFreqs = []map[string]int{}
		}
		p.Kind = &index.BM25{Index: rec.BM25, DocTokens: rec.DocTokens}
	default:
		p.Kind = &index.Boolean{DocTokens: rec.DocTokens}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeBody(p *index.Payload) ([]byte, error) {
	raw, err := encMode.Marshal(toRecord(p))
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func decodeBody(body []byte) (*index.Payload, error) {
	raw, err := zstdDecoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	var rec record
	if err := decMode.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return fromRecord(rec)
}
