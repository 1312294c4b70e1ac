package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/weft/pkg/codec"
)

// Stdio is the path naming standard input or output.
const Stdio = "-"

// ResolveFormat picks the document format: the explicit flag when set,
// otherwise the file extension.
func ResolveFormat(flag, path string) (codec.Format, error) {
	if flag != "" {
		return codec.ParseFormat(flag)
	}
	if path == Stdio {
		return codec.FormatXML, nil
	}
	return codec.FormatFor(path), nil
}

// ReadDocument reads path, or stdin for "-".
func ReadDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == Stdio {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

// WriteDocument writes data to path, or stdout for "-".
func WriteDocument(path string, data []byte, stdout io.Writer) error {
	if path == Stdio {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
