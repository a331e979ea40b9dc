package httpapi

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON body, plain or gzip. Gzip is detected from
// Content-Encoding or, failing that, from the magic bytes: some scoreboard
// remotes compress without saying so.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	br := bufio.NewReader(io.LimitReader(r.Body, maxBodyBytes))

	var reader io.Reader = br
	magic, _ := br.Peek(2)
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") ||
		(len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("gzip header: %w", err)
		}
		defer gz.Close()
		reader = io.LimitReader(gz, maxBodyBytes)
	}

	dec := json.NewDecoder(reader)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
