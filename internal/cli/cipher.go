package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/textcipher-go/internal/encryption"
	"github.com/textcipher-go/internal/engine"
	"github.com/textcipher-go/internal/errors"
)

type cipherOptions struct {
	method string
	key    string
	text   string
	in     string
	out    string
	format string
	output string
}

func newCipherCommand(a *app, name string) *cobra.Command {
	dir := encryption.Encrypt
	verb := "Encrypt"
	if name == "decrypt" {
		dir = encryption.Decrypt
		verb = "Decrypt"
	}

	opts := &cipherOptions{}
	cmd := &cobra.Command{
		Use:   name,
		Short: verb + " text or a file",
		Long: verb + ` text or a file with a rotation or repeating-key XOR cipher.

INPUT:
  textcipher ` + name + ` --text "Hello" --key 3                 # inline text
  textcipher ` + name + ` --in a.txt --out b.txt --method xor     # file to file
  echo "Hello" | textcipher ` + name + ` --key 3                  # stdin

The key is prompted for without echo when --key is omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCipher(cmd, dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "m", "rotation", "Cipher method (rotation, xor)")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Shift for rotation, key text for xor")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "Inline text")
	cmd.Flags().StringVar(&opts.in, "in", "", "Input file")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output file for --in")
	cmd.Flags().StringVar(&opts.format, "format", engine.FormatText, "Text encoding (text, hex, base64)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write text output to a file instead of stdout")
	return cmd
}

func (a *app) runCipher(cmd *cobra.Command, dir encryption.Direction, opts *cipherOptions) error {
	fileMode := opts.in != "" || opts.out != ""
	switch {
	case fileMode && (opts.in == "" || opts.out == ""):
		return errors.NewBadRequest("--in and --out must be given together")
	case fileMode && opts.text != "":
		return errors.NewBadRequest("--text cannot be combined with --in")
	case !engine.ValidFormat(opts.format):
		return errors.NewBadRequest("unknown format: " + opts.format)
	}

	if !cmd.Flags().Changed("key") {
		key, err := promptKey(cmd)
		if err != nil {
			return err
		}
		opts.key = key
	}

	history, closeHistory := a.openHistory()
	defer closeHistory()
	eng := a.newEngine(history)
	ctx := cmd.Context()

	if fileMode {
		run := eng.EncryptFile
		if dir == encryption.Decrypt {
			run = eng.DecryptFile
		}
		res, err := run(ctx, opts.in, opts.out, opts.method, opts.key)
		if err != nil {
			return err
		}
		warnFallback(cmd, res, opts.method)
		fmt.Fprintf(cmd.OutOrStdout(), "%sed %s -> %s (%s, %s)\n",
			dir, opts.in, opts.out, res.Method, humanize.Bytes(uint64(res.Bytes)))
		return nil
	}

	input, err := a.inputText(cmd, dir, opts)
	if err != nil {
		return err
	}

	var res engine.Result
	if dir == encryption.Encrypt {
		res, err = eng.EncryptText(ctx, input, opts.method, opts.key)
	} else {
		res, err = eng.DecryptText(ctx, input, opts.method, opts.key)
	}
	if err != nil {
		return err
	}
	warnFallback(cmd, res, opts.method)

	format := engine.FormatText
	if dir == encryption.Encrypt {
		format = opts.format
	}
	text, err := engine.EncodeOutput(format, res.Output)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(text), 0644); err != nil {
			return errors.NewSinkUnavailable(opts.output, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s to %s\n", humanize.Bytes(uint64(len(text))), opts.output)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// inputText returns the inline payload from --text or piped stdin. On
// decrypt the payload is decoded from --format first.
func (a *app) inputText(cmd *cobra.Command, dir encryption.Direction, opts *cipherOptions) ([]byte, error) {
	raw := opts.text
	if !cmd.Flags().Changed("text") {
		in := cmd.InOrStdin()
		if isTerminal(in) {
			return nil, errors.NewBadRequest("no input: use --text, --in or pipe to stdin")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, errors.NewSourceUnavailable("stdin", err)
		}
		// Drop the one newline a shell adds. Ciphertext may end in \r.
		raw = strings.TrimSuffix(string(data), "\n")
	}

	if dir == encryption.Decrypt {
		return engine.DecodeInput(opts.format, raw)
	}
	return []byte(raw), nil
}

func warnFallback(cmd *cobra.Command, res engine.Result, tag string) {
	if res.Fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: unknown method %q, used %s\n", tag, res.Method)
	}
}

// promptKey reads the key from the terminal without echo
func promptKey(cmd *cobra.Command) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.NewBadRequest("--key is required when stdin is not a terminal")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Key: ")
	key, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.NewBadRequestWithCause("failed to read key", err)
	}
	return string(key), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
