package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Electrofried/utf8-mixed-radix-tokenizer/internal/tokenio"
	"github.com/Electrofried/utf8-mixed-radix-tokenizer/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var text string
	var out string
	var format string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text into mixed-radix tokens",
		Long: "Encode converts text into one integer per Unicode character. " +
			"Text is encoded exactly as given; no trimming or normalization is applied.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			selectedFormat := cfg.Output.Format
			if format != "" {
				selectedFormat = format
			}

			input, err := readEncodeInput(text, os.Stdin)
			if err != nil {
				return err
			}

			tokens, err := tokenizer.Encode(input)
			if err != nil {
				return err
			}

			rendered, err := tokenio.Format(tokens, selectedFormat)
			if err != nil {
				return err
			}

			return writeOutput(out, rendered+"\n", os.Stdout)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode (if empty, read from stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "Output path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Token sequence format (space|csv|json; overrides config)")

	return cmd
}

// readEncodeInput returns the --text flag value, or the full stdin
// contents when the flag is empty. Input bytes are preserved exactly so
// that decoding the output reproduces them.
func readEncodeInput(text string, stdin io.Reader) (string, error) {
	if text != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func writeOutput(outPath, data string, stdout io.Writer) error {
	if outPath == "-" || outPath == "" {
		_, err := io.WriteString(stdout, data)
		return err
	}
	return os.WriteFile(outPath, []byte(data), 0o644)
}
