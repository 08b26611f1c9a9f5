// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metaclient

import (
	"bytes"
	"io"
)

func newReader(body []byte) io.Reader {
	return bytes.NewReader(body)
}
