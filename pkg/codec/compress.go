package codec

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// deflateBase64 compresses data with raw deflate and encodes the result
// as standard base64. This is the page payload encoding used by
// compressed documents.
func deflateBase64(data []byte) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// inflateBase64 reverses [deflateBase64]. Whitespace inside the base64
// text is tolerated since XML serializers are free to wrap long runs of
// character data.
func inflateBase64(payload string) ([]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformedCompression, err)
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrMalformedCompression, err)
	}
	return out, nil
}
