package buffer

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

// Current snapshot version - increment when the encoded layout changes.
const snapshotSchema uint16 = 1

// EncodeMsgpack implements msgpack.CustomEncoder. A buffer is encoded as
// [schema, [fragment...]]; escaper and renderer are not part of it.
func (b *Buffer) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeUint16(snapshotSchema); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(b.fragments)); err != nil {
		return err
	}
	for _, f := range b.fragments {
		if err := enc.EncodeString(f); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack implements msgpack.CustomDecoder. It replaces the
// fragments of b.
func (b *Buffer) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return errors.Errorf(errors.ErrInvalidOperand, "malformed buffer snapshot: %d fields", n).
			WithOp("buffer.decode")
	}
	schema, err := dec.DecodeUint16()
	if err != nil {
		return err
	}
	if schema != snapshotSchema {
		return errors.Errorf(errors.ErrInvalidOperand, "unsupported buffer snapshot version %d", schema).
			WithOp("buffer.decode")
	}

	count, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	fragments := make([]string, 0, min(max(count, 0), 1024))
	for range count {
		s, err := dec.DecodeString()
		if err != nil {
			return errors.NewError(errors.ErrInvalidOperand, "malformed buffer snapshot").
				WithOp("buffer.decode").
				WithCause(err)
		}
		fragments = append(fragments, s)
	}
	b.fragments = fragments
	return nil
}

// Save writes a snapshot of b to w.
func (b *Buffer) Save(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(b)
}

// Load reads a buffer snapshot written by Save.
func Load(r io.Reader) (*Buffer, error) {
	b := New()
	if err := msgpack.NewDecoder(r).Decode(b); err != nil {
		return nil, err
	}
	return b, nil
}
