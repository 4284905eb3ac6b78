// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdWriterPool = sync.Pool{
		New: func() any {
			e, _ := zstd.NewWriter(nil)
			return e
		},
	}
	zstdReaderPool = sync.Pool{
		New: func() any {
			d, _ := zstd.NewReader(nil)
			return d
		},
	}
)

// encodeBlob gob-encodes v, zstd-compresses the result, and returns it
// base64-encoded so it can be embedded as a TOML string value.
func encodeBlob(v any) (string, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return "", err
	}

	var compressed bytes.Buffer
	w := zstdWriterPool.Get().(*zstd.Encoder)
	w.Reset(&compressed)
	_, writeErr := w.Write(raw.Bytes())
	closeErr := w.Close()
	zstdWriterPool.Put(w)
	if writeErr != nil {
		return "", writeErr
	}
	if closeErr != nil {
		return "", closeErr
	}

	return base64.StdEncoding.EncodeToString(compressed.Bytes()), nil
}

// decodeBlob reverses encodeBlob into v (a pointer to the payload type
// the caller expects).
func decodeBlob(blob string, v any) error {
	compressed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return err
	}

	d := zstdReaderPool.Get().(*zstd.Decoder)
	if err := d.Reset(bytes.NewReader(compressed)); err != nil {
		zstdReaderPool.Put(d)
		return err
	}
	var raw bytes.Buffer
	_, err = raw.ReadFrom(d)
	zstdReaderPool.Put(d)
	if err != nil {
		return err
	}

	return gob.NewDecoder(&raw).Decode(v)
}
