// Package inkfile reads and writes the native document container.
//
// The on-disk layout is a fixed header followed by a compressed JSON body:
//
//	offset 0: magic "INKDOC\r\n" (8 bytes)
//	offset 8: format version, big-endian uint32
//	offset 12: gzip-compressed JSON document
//
// Encoding is deterministic: the same document always produces the same
// bytes, so content hashes and sync diffing work on saved files. Decoding
// dispatches on the stored version and upgrades older documents in memory;
// EncodeVersion can write older versions for interchange, dropping the
// features they cannot carry.
package inkfile

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gogpu/ink/document"
)

// Magic identifies a native document file. The \r\n tail catches text-mode
// transfer mangling, the same trick PNG uses.
const Magic = "INKDOC\r\n"

// headerSize is the magic plus the version word.
const headerSize = len(Magic) + 4

// Format versions.
const (
	// VersionInitial is the first released format: plain backgrounds and
	// precise shapes only.
	VersionInitial uint32 = 1
	// VersionPatterns added background patterns and rough shape options.
	VersionPatterns uint32 = 2

	// CurrentVersion is the version Encode writes.
	CurrentVersion = VersionPatterns
)

// FormatError reports a file that cannot be decoded: wrong magic, an
// unsupported version, or a malformed body.
type FormatError struct {
	Version uint32
	Reason  string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inkfile: %s: %v", e.Reason, e.Err)
	}
	return "inkfile: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// Encode serializes the document at the current format version.
func Encode(doc *document.Document) ([]byte, error) {
	data, _, err := EncodeVersion(doc, CurrentVersion)
	return data, err
}

// EncodeVersion serializes the document at the given format version.
// Writing an older version drops the features it cannot represent; every
// dropped feature is returned as a warning string (and logged) so the caller
// can tell the user what the downgrade lost. The current version never
// produces warnings.
func EncodeVersion(doc *document.Document, version uint32) ([]byte, []string, error) {
	var body []byte
	var warnings []string
	var err error
	switch version {
	case VersionPatterns:
		body, err = marshalV2(doc)
	case VersionInitial:
		body, warnings, err = marshalV1(doc)
	default:
		return nil, nil, &FormatError{Version: version, Reason: fmt.Sprintf("cannot encode version %d", version)}
	}
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(Magic)
	var ver [4]byte
	binary.BigEndian.PutUint32(ver[:], version)
	buf.Write(ver[:])

	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, nil, fmt.Errorf("inkfile: compressing body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("inkfile: compressing body: %w", err)
	}
	return buf.Bytes(), warnings, nil
}

// Decode parses a native document file. Documents saved at older versions
// are upgraded in memory; the file on disk is not touched.
func Decode(data []byte) (*document.Document, error) {
	if len(data) < headerSize {
		return nil, &FormatError{Reason: "file too short for header"}
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, &FormatError{Reason: "bad magic, not an ink document"}
	}
	version := binary.BigEndian.Uint32(data[len(Magic):headerSize])
	if version < VersionInitial || version > CurrentVersion {
		return nil, &FormatError{
			Version: version,
			Reason:  fmt.Sprintf("unsupported version %d (newest supported is %d)", version, CurrentVersion),
		}
	}

	zr, err := gzip.NewReader(bytes.NewReader(data[headerSize:]))
	if err != nil {
		return nil, &FormatError{Version: version, Reason: "corrupt body", Err: err}
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, &FormatError{Version: version, Reason: "corrupt body", Err: err}
	}
	if err := zr.Close(); err != nil {
		return nil, &FormatError{Version: version, Reason: "corrupt body", Err: err}
	}

	switch version {
	case VersionPatterns:
		return unmarshalV2(body)
	case VersionInitial:
		return unmarshalV1(body)
	}
	panic("unreachable")
}
