package gigevision

//
// Device description URL parsing and fetch (spec §6). The core stops at
// raw bytes: turning the XML into a feature/node map is a downstream
// concern.
//

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// GetDeviceDescriptionURL reads the null-terminated URL string from the
// bootstrap FIRST_URL register.
func (c *GVCPClient) GetDeviceDescriptionURL() (string, error) {
	raw, err := c.ReadMem(RegFirstURL, RegFirstURLLen)
	if err != nil {
		return "", err
	}
	return bytesToStr(raw), nil
}

// deviceDescriptionURL is a parsed FIRST_URL value.
type deviceDescriptionURL struct {
	scheme string // "local", "file", "http"
	name   string
	addr   uint32
	length uint32
	path   string
}

// parseDeviceDescriptionURL parses the three URL forms named in spec §6:
// "local:name.ext;addr;length", "file:///path", "http://...".
func parseDeviceDescriptionURL(url string) (*deviceDescriptionURL, error) {
	switch {
	case strings.HasPrefix(url, "local:"):
		rest := strings.TrimPrefix(url, "local:")
		parts := strings.Split(rest, ";")
		if len(parts) != 3 {
			return nil, &AckValueError{Msg: "malformed local: device description URL", Expected: "name;addr;length", Actual: url}
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 32)
		if err != nil {
			return nil, &AckValueError{Msg: "malformed address in local: URL", Expected: "hex or decimal uint32", Actual: parts[1]}
		}
		length, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 0, 32)
		if err != nil {
			return nil, &AckValueError{Msg: "malformed length in local: URL", Expected: "hex or decimal uint32", Actual: parts[2]}
		}
		return &deviceDescriptionURL{scheme: "local", name: parts[0], addr: uint32(addr), length: uint32(length)}, nil

	case strings.HasPrefix(url, "file://"):
		return &deviceDescriptionURL{scheme: "file", path: strings.TrimPrefix(url, "file://")}, nil

	case strings.HasPrefix(url, "http://"):
		return &deviceDescriptionURL{scheme: "http"}, nil

	default:
		return nil, &AckValueError{Msg: "unrecognized device description URL scheme", Expected: "local:/file://http://", Actual: url}
	}
}

// fetchMemChunked reads length bytes starting at addr in
// [ReadMemMaxPayload]-sized chunks, rounding the final chunk up to a
// 4-byte boundary and truncating the result to length (spec §6).
func (c *GVCPClient) fetchMemChunked(addr, length uint32) ([]byte, error) {
	out := make([]byte, 0, length)
	remaining := length
	cur := addr
	for remaining > 0 {
		chunk := uint32(ReadMemMaxPayload)
		if remaining < chunk {
			chunk = remaining
		}
		readLen := chunk
		if readLen%4 != 0 {
			readLen += 4 - readLen%4
		}
		data, err := c.ReadMem(cur, uint16(readLen))
		if err != nil {
			return nil, err
		}
		if uint32(len(data)) > chunk {
			data = data[:chunk]
		}
		out = append(out, data...)
		cur += chunk
		remaining -= chunk
	}
	return out, nil
}

// extractSingleXMLFromZip returns the bytes of the sole file inside a
// ZIP device description archive.
func extractSingleXMLFromZip(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if len(r.File) != 1 {
		return nil, &AckValueError{Msg: "expected exactly one file in device description zip", Expected: 1, Actual: len(r.File)}
	}
	rc, err := r.File[0].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// GetDeviceDescriptionFile fetches the raw device description document
// (XML, or the XML extracted from a ZIP archive). http:// URLs are
// explicitly out of scope (spec §1 Non-goals).
func (c *GVCPClient) GetDeviceDescriptionFile() ([]byte, error) {
	rawURL, err := c.GetDeviceDescriptionURL()
	if err != nil {
		return nil, err
	}
	parsed, err := parseDeviceDescriptionURL(rawURL)
	if err != nil {
		return nil, err
	}

	var data []byte
	var ext string
	switch parsed.scheme {
	case "local":
		data, err = c.fetchMemChunked(parsed.addr, parsed.length)
		if err != nil {
			return nil, err
		}
		ext = path.Ext(parsed.name)
	case "file":
		data, err = os.ReadFile(parsed.path)
		if err != nil {
			return nil, err
		}
		ext = path.Ext(parsed.path)
	case "http":
		return nil, ErrNotImplemented
	default:
		return nil, &AckValueError{Msg: "unrecognized device description URL scheme", Expected: "local:/file://http://", Actual: rawURL}
	}

	switch strings.ToLower(ext) {
	case ".xml":
		return data, nil
	case ".zip":
		return extractSingleXMLFromZip(data)
	default:
		return nil, &AckValueError{Msg: fmt.Sprintf("unsupported device description extension %q", ext), Expected: ".xml or .zip", Actual: ext}
	}
}
