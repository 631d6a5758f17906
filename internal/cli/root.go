package cli

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"gopkg.in/yaml.v3"

	"iplistnorm/ip4"
)

type outputFormat string

const (
	outHuman outputFormat = "human"
	outJSON  outputFormat = "json"
	outYAML  outputFormat = "yaml"
)

// Set implements pflag.Value for validation.
func (o *outputFormat) Set(v string) error {
	switch v {
	case string(outHuman), string(outJSON), string(outYAML):
		*o = outputFormat(v)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", v)
	}
}
func (o *outputFormat) String() string { return string(*o) }
func (o *outputFormat) Type() string   { return "outputFormat" }

// Version gets overridden via -ldflags at build time (e.g. -X iplistnorm/internal/cli.Version=v1.2.3)
var Version = "dev"

// Commit and BuildDate can also be injected (optional)
var (
	Commit    = ""
	BuildDate = ""
)

// RangeTooLargeError is returned when a range entry would expand past
// IPLISTNORM_RANGE_FORCE_THRESHOLD records without --force.
type RangeTooLargeError struct {
	Entry string
	Size  uint64
}

func (e RangeTooLargeError) Error() string {
	return fmt.Sprintf("entry %q expands to %d addresses; rerun with --force to proceed", e.Entry, e.Size)
}

// Exit codes for different error classes.
const (
	exitCodeInvalidInput = 2
	exitCodeBadArgument  = 3
	exitCodeRangeTooBig  = 4
)

// thresholds (can be overridden via env for tests)
var (
	defaultRangeWarnThreshold  = 1 << 16 // 65,536
	defaultRangeForceThreshold = 1 << 20 // 1,048,576
)

// getThreshold reads an int env var or returns fallback.
func getThreshold(env string, fallback int) int {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// guardRangeSizes checks every range entry's expansion size against the
// warn/force thresholds before a caller hands entries to Serialize or
// NormalizeText, which never refuse a large range themselves.
func guardRangeSizes(entries []string, force bool, warnOut io.Writer) error {
	warnThreshold := uint64(getThreshold("IPLISTNORM_RANGE_WARN_THRESHOLD", defaultRangeWarnThreshold))
	forceThreshold := uint64(getThreshold("IPLISTNORM_RANGE_FORCE_THRESHOLD", defaultRangeForceThreshold))
	for _, s := range entries {
		ent := ip4.ParseEntry(s)
		if ent.Kind != ip4.Range {
			continue
		}
		size := ip4.RangeSize(ent.First, ent.Last)
		if size > forceThreshold && !force {
			return RangeTooLargeError{Entry: s, Size: size}
		}
		if size > warnThreshold && !force && warnOut != nil {
			_, _ = fmt.Fprintf(warnOut, "warning: %q expands to %d addresses (use --force to suppress)\n", s, size)
		}
	}
	return nil
}

// NewRootCmd constructs a new *cobra.Command tree with isolated state.
func NewRootCmd(out io.Writer) *cobra.Command {
	var format = outHuman

	rootCmd := &cobra.Command{Use: "iplistnorm", Short: "IPv4 address list normalizer", Long: "iplistnorm parses, serializes, coalesces, and validates lists of IPv4 addresses, CIDR blocks, and ranges."}
	// Auto-detect format from env var if flag not supplied.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("output") {
			if envFmt := os.Getenv("IPLISTNORM_FORMAT"); envFmt != "" {
				_ = format.Set(envFmt) // ignore invalid env value (explicit)
			}
		}
		return nil
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().VarP(&format, "output", "o", "output format: human|json|yaml")

	// Rendering helper closure bound to this command's writer & format.
	render := func(v any) error {
		w := rootCmd.OutOrStdout()
		schemaWrap := func(obj any) any {
			if format == outJSON || format == outYAML {
				if m, ok := obj.(map[string]any); ok {
					merged := make(map[string]any, len(m)+1)
					for k, v := range m {
						merged[k] = v
					}
					merged["schema"] = "iplistnorm/v1"
					return merged
				}
				return map[string]any{"schema": "iplistnorm/v1", "data": obj}
			}
			return obj
		}
		switch format {
		case outHuman, "":
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.String {
				for i := 0; i < rv.Len(); i++ {
					if _, err := fmt.Fprintln(w, rv.Index(i).Interface()); err != nil {
						return err
					}
				}
				return nil
			}
			_, _ = fmt.Fprintln(w, v)
		case outJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(schemaWrap(v))
		case outYAML:
			enc := yaml.NewEncoder(w)
			if err := enc.Encode(schemaWrap(v)); err != nil {
				_ = enc.Close()
				return err
			}
			if err := enc.Close(); err != nil { // capture close error
				return err
			}
		default:
			return errors.New("unknown output format")
		}
		return nil
	}

	readStdinLines := func() ([]string, error) {
		info, err := os.Stdin.Stat()
		if err != nil {
			return nil, err
		}
		if (info.Mode() & os.ModeCharDevice) != 0 {
			return nil, nil
		}
		scanner := bufio.NewScanner(os.Stdin)
		var lines []string
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				lines = append(lines, line)
			}
		}
		return lines, scanner.Err()
	}

	resolveEntries := func(args []string) ([]string, error) {
		if len(args) > 0 {
			return args, nil
		}
		return readStdinLines()
	}

	// ---- Commands ----

	normalizeCmd := &cobra.Command{Use: "normalize [entry ...]", Short: "Normalize a list of IPv4 entries into a sorted, coalesced form", Args: cobra.ArbitraryArgs, Example: "  iplistnorm normalize 10.0.0.0,10.0.0.7 192.168.1.1\n  echo 10.0.0.1 | iplistnorm normalize", RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		entries, err := resolveEntries(args)
		if err != nil {
			return err
		}
		if err := guardRangeSizes(entries, force, cmd.ErrOrStderr()); err != nil {
			return err
		}
		list, err := ip4.NormalizeText(entries)
		if err != nil {
			return err
		}
		return render(list)
	}}
	normalizeCmd.Flags().Bool("force", false, "proceed even if a range entry expands past the force threshold")

	serializeCmd := &cobra.Command{Use: "serialize [entry ...]", Short: "Serialize entries into the internal 5-byte record form, hex-encoded", Args: cobra.ArbitraryArgs, Example: "  iplistnorm serialize 10.0.0.1 192.168.1.0/24", RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		entries, err := resolveEntries(args)
		if err != nil {
			return err
		}
		if err := guardRangeSizes(entries, force, cmd.ErrOrStderr()); err != nil {
			return err
		}
		buf, err := ip4.Serialize(entries)
		if err != nil {
			return err
		}
		var list []string
		for p := 0; p+5 <= len(buf); p += 5 {
			list = append(list, hex.EncodeToString(buf[p:p+5]))
		}
		return render(list)
	}}
	serializeCmd.Flags().Bool("force", false, "proceed even if a range entry expands past the force threshold")

	validateCmd := &cobra.Command{Use: "validate [entry ...]", Short: "Report the 1-based indices of invalid entries", Args: cobra.ArbitraryArgs, Example: "  iplistnorm validate 10.0.0.1 garbage --n 5\n  echo garbage | iplistnorm validate", RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")
		entries, err := resolveEntries(args)
		if err != nil {
			return err
		}
		invalid, err := ip4.ValidateList(entries, n)
		if err != nil {
			return err
		}
		list := make([]string, len(invalid))
		for i, idx := range invalid {
			list[i] = strconv.Itoa(idx)
		}
		return render(list)
	}}
	validateCmd.Flags().Int("n", 1, "maximum number of invalid entries to report")

	validateStreamCmd := &cobra.Command{Use: "validate-stream [file]", Short: "Validate a newline-delimited byte stream without buffering it whole", Args: cobra.MaximumNArgs(1), Example: "  iplistnorm validate-stream addresses.txt --n 5\n  cat addresses.txt | iplistnorm validate-stream", RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")
		var source io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			source = f
		}
		invalid, err := ip4.Validate(source, n)
		if err != nil {
			return err
		}
		list := make([]string, len(invalid))
		for i, idx := range invalid {
			list[i] = strconv.Itoa(idx)
		}
		return render(list)
	}}
	validateStreamCmd.Flags().Int("n", 1, "maximum number of invalid lines to report")

	stripCmd := &cobra.Command{Use: "strip [file]", Short: "Copy only the syntactically valid lines of a byte stream to stdout", Args: cobra.MaximumNArgs(1), Example: "  iplistnorm strip addresses.txt > clean.txt\n  cat addresses.txt | iplistnorm strip", RunE: func(cmd *cobra.Command, args []string) error {
		var source io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			source = f
		}
		return ip4.StripInvalid(source, rootCmd.OutOrStdout())
	}}

	versionCmd := &cobra.Command{Use: "version", Short: "Print version information", RunE: func(cmd *cobra.Command, args []string) error {
		return render(map[string]string{"version": Version, "commit": Commit, "build_date": BuildDate})
	}}

	completionCmd := &cobra.Command{Use: "completion [bash|zsh|fish|powershell]", Short: "Generate shell completion script", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		w := rootCmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(w)
		case "zsh":
			return rootCmd.GenZshCompletion(w)
		case "fish":
			return rootCmd.GenFishCompletion(w, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(w)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	}}

	docsCmd := &cobra.Command{Use: "docs <directory>", Short: "Generate Markdown documentation for commands", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		root := cmd.Root()
		root.DisableAutoGenTag = true
		return doc.GenMarkdownTree(root, dir)
	}}

	manCmd := &cobra.Command{Use: "man <directory>", Short: "Generate man pages", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		root := cmd.Root()
		root.DisableAutoGenTag = true
		header := &doc.GenManHeader{Title: "IPLISTNORM", Section: "1"}
		return doc.GenManTree(root, header, dir)
	}}

	rootCmd.AddCommand(normalizeCmd, serializeCmd, validateCmd, validateStreamCmd, stripCmd, versionCmd, completionCmd, docsCmd, manCmd)
	return rootCmd
}

// Execute builds and runs the CLI using os.Stdout.
func Execute() {
	cmd := NewRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		code := 1
		switch {
		case errors.Is(err, ip4.ErrInvalidEntry):
			code = exitCodeInvalidInput
		case errors.Is(err, ip4.ErrBadArgument):
			code = exitCodeBadArgument
		case errors.As(err, new(RangeTooLargeError)):
			code = exitCodeRangeTooBig
		}
		fmt.Fprintf(os.Stderr, "iplistnorm: %v\n", err)
		os.Exit(code)
	}
}
