package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/urlbypass/internal/config"
	"github.com/maxvaer/urlbypass/internal/runner"
	"github.com/maxvaer/urlbypass/pkg/version"
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "list", "dict"}},
	{"PERFORMANCE", []string{"workers", "timeout", "rps", "adaptive-throttle"}},
	{"HTTP", []string{"proxy", "user-agent", "insecure"}},
	{"OUTPUT", []string{"output", "format", "quiet", "no-color", "no-progress"}},
	{"HOOK", []string{"on-result", "include-status", "exclude-status", "exclude-size"}},
	{"LOGGING", []string{"verbose", "log-json"}},
	{"CONFIGURATION", []string{"config", "save", "db-dir"}},
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := config.NewOptions()

	cmd := &cobra.Command{
		Use:     "urlbypass -u <url> [flags]",
		Short:   "Probe URL path variants for access-control bypasses",
		Version: version.String(),
		Long: `urlbypass inserts bypass patterns (such as ".html", "..;" or "%2e") at
every position of a URL path, requests each variant concurrently and
groups the responses by HTTP status so that variants answering
differently from the unmodified URL stand out.`,
		Example: `  urlbypass -u https://example.com/admin
  urlbypass -u https://example.com/api/v1 -d patterns.txt -w 20 -t 3
  urlbypass -l urls.txt -o report.md --format markdown
  urlbypass -u https://example.com/admin -p 127.0.0.1:8080 -k
  urlbypass -u https://example.com/admin --rps 5 --adaptive-throttle
  urlbypass -u https://example.com/admin --save && urlbypass history
  urlbypass -u https://example.com/admin --on-result "notify-send {status} {url}"`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfigFile(cmd, opts); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				if errors.Is(err, config.ErrNoTarget) {
					_ = cmd.Help()
				}
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runner.Run(ctx, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Base URL to probe")
	f.StringVarP(&opts.ListFile, "list", "l", "", "File with one base URL per line")
	f.StringVarP(&opts.PatternFile, "dict", "d", opts.PatternFile, "Bypass pattern dictionary, one pattern per line")
	cmd.MarkFlagsMutuallyExclusive("url", "list")

	// Performance
	f.IntVarP(&opts.Workers, "workers", "w", config.DefaultWorkers, "Maximum concurrent requests")
	f.VarP(&secondsValue{target: &opts.Timeout}, "timeout", "t", "Per-request timeout in seconds")
	f.Float64Var(&opts.RPS, "rps", 0, "Maximum requests per second (0 = unlimited)")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Back off on 429/503 and repeated transport errors")

	// HTTP
	f.StringVarP(&opts.Proxy, "proxy", "p", "", "Proxy for http and https (host:port or URL)")
	f.StringVar(&opts.UserAgent, "user-agent", "", "Custom User-Agent string")
	f.BoolVarP(&opts.Insecure, "insecure", "k", false, "Skip TLS certificate verification")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Report file path")
	f.StringVar(&opts.OutputFormat, "format", config.DefaultFormat, "Report format: "+strings.Join(config.Formats, ", "))
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide banner and progress bar")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.NoProgress, "no-progress", false, "Disable the progress bar")

	// Hook
	f.StringVar(&opts.OnResult, "on-result", "", "Shell command to run for each result (receives JSON on stdin)")
	f.VarP(&intSliceValue{target: &opts.IncludeStatus}, "include-status", "i", "Run the hook only for these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Skip the hook for these status codes (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeSize}, "exclude-size", "Skip the hook for responses of these sizes (comma-separated)")

	// Logging
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging on stderr")
	f.BoolVar(&opts.LogJSON, "log-json", false, "Log as JSON")

	// Configuration
	f.StringVar(&opts.ConfigFile, "config", "", "Config file (default ./"+config.LocalConfigFile+" or XDG config.yaml)")
	f.BoolVar(&opts.Save, "save", false, "Store the run in the history database")
	f.StringVar(&opts.DBDir, "db-dir", opts.DBDir, "History database directory")

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd.HasParent() {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		w := cmd.ErrOrStderr()
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nCommands:\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(w, "   %-12s%s\n", sub.Name(), sub.Short)
			}
		}
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})

	cmd.AddCommand(newHistoryCmd(), newVersionCmd())
	return cmd
}

// applyConfigFile merges the config file into opts. Flags given on the
// command line keep their values. A missing file is only an error when
// --config named it.
func applyConfigFile(cmd *cobra.Command, opts *config.Options) error {
	path := config.FindConfigFile(opts.ConfigFile)
	if path == "" {
		return nil
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	file.Apply(opts, cmd.Flags().Changed)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// secondsValue implements pflag.Value for a duration given as whole
// seconds on the command line.
type secondsValue struct {
	target *time.Duration
}

func (v *secondsValue) String() string {
	if v.target == nil {
		return "0"
	}
	return strconv.Itoa(int(*v.target / time.Second))
}

func (v *secondsValue) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid number of seconds %q: %w", s, err)
	}
	if n <= 0 {
		return config.ErrInvalidTimeout
	}
	*v.target = time.Duration(n) * time.Second
	return nil
}

func (v *secondsValue) Type() string { return "int" }

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	const col = 32
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" {
		right += fmt.Sprintf(" (default %s)", def)
	}
	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
             __  __
  __  ______/ / / /_  ______  ____ ___________
 / / / / __/ / / __ \/ / / / __ \/ __ '/ ___/ ___/
/ /_/ / / / / / /_/ / /_/ / /_/ / /_/ (__  |__  )
\__,_/_/ /_/ /_.___/\__, / .___/\__,_/____/____/   %s
                   /____/_/

`, ver)
}
