package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Electrofried/utf8-mixed-radix-tokenizer/internal/tokenio"
	"github.com/Electrofried/utf8-mixed-radix-tokenizer/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var tokens string
	var out string
	var format string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode mixed-radix tokens back into text",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			selectedFormat := cfg.Output.Format
			if format != "" {
				selectedFormat = format
			}

			input, err := readDecodeInput(tokens, os.Stdin)
			if err != nil {
				return err
			}

			parsed, err := tokenio.Parse(input, selectedFormat)
			if err != nil {
				return err
			}

			text, err := tokenizer.Decode(parsed)
			if err != nil {
				return err
			}

			return writeOutput(out, text, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&tokens, "tokens", "", "Token sequence to decode (if empty, read from stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "Output path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Token sequence format (space|csv|json; overrides config)")

	return cmd
}

func readDecodeInput(tokens string, stdin io.Reader) (string, error) {
	if tokens != "" {
		return tokens, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
