// Command-line entry point for the EMWIN bulletin decoder.
//
// Input files
// -----------
// EMWIN text products arrive as files named after the WMO heading they carry,
// e.g. A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT. When a
// file name decodes, its designator is used for dispatch and its creation
// time anchors the day-of-month times in the body. Anything else (stdin,
// renamed files) is classified from the heading line of the text itself.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/emwin"
	"emwin_parser/internal/goes"
	_ "emwin_parser/internal/parsers" // register all decoders via init()
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "emwin_parser - commands:")
	fmt.Fprintln(w, "  decode    - decode bulletin files (or stdin) and output JSON")
	fmt.Fprintln(w, "  classify  - classify TTAAii designators")
	fmt.Fprintln(w, "  goes      - decode GOES-R image file names")
	fmt.Fprintln(w, "  watch     - watch the EMWIN and GOES directories and store what arrives")
	fmt.Fprintln(w, "  serve     - serve the HTTP API over the local report archive")
	fmt.Fprintln(w, "  ledger    - show or prune the processed-file ledger")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  emwin_parser decode [-reference 2024-03-01] [-pretty] [-trace] [file ...]")
	fmt.Fprintln(w, "  emwin_parser classify FTUS80 WWUS81 ...")
	fmt.Fprintln(w, "  emwin_parser goes OR_ABI-L2-CMIPM1-M6C02_G18_s20233551530227_e20233551530284_c20233551530355.jpg ...")
	fmt.Fprintln(w, "  emwin_parser watch [-config path]")
	fmt.Fprintln(w, "  emwin_parser serve [-config path] [-addr :8080]")
	fmt.Fprintln(w, "  emwin_parser ledger [-config path] [-prune 720h]")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	var err error
	switch cmd {
	case "decode":
		err = runDecode(os.Args[2:])
	case "classify":
		err = runClassify(os.Args[2:])
	case "goes":
		err = runGoes(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "ledger":
		err = runLedger(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

// DecodeOut is the JSON output for one input.
type DecodeOut struct {
	Source  string                 `json:"source"`
	Status  string                 `json:"status"`
	Family  string                 `json:"family,omitempty"`
	Heading *wmo.Heading           `json:"heading,omitempty"`
	Result  *registry.Result       `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Traces  []registry.TraceResult `json:"traces,omitempty"`
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	reference := fs.String("reference", "", "Date the bulletin was issued, YYYY-MM-DD (default: file creation time from the name, else now)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	trace := fs.Bool("trace", false, "Include how far each candidate decoder got")
	_ = fs.Parse(args)

	var ref time.Time
	if *reference != "" {
		t, err := time.Parse(time.DateOnly, *reference)
		if err != nil {
			return fmt.Errorf("invalid -reference %q", *reference)
		}
		ref = t
	}

	reg := registry.Default()
	reg.Sort()

	var out []DecodeOut
	if fs.NArg() == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		out = append(out, decodeOne(reg, "stdin", raw, bulletin.Options{Source: "stdin", Reference: ref}, *trace))
	}
	for _, path := range fs.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		opts := bulletin.Options{Source: path, Reference: ref}
		if fn, err := emwin.Parse(path); err == nil {
			opts.Designator = fn.Designator()
			if ref.IsZero() {
				opts.Reference = fn.Reference()
			}
		}
		out = append(out, decodeOne(reg, path, raw, opts, *trace))
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func decodeOne(reg *registry.Registry, source string, raw []byte, opts bulletin.Options, trace bool) DecodeOut {
	out := DecodeOut{Source: source}
	b, err := bulletin.Parse(raw, opts)
	if b == nil {
		out.Status = "unrecognized"
		out.Error = err.Error()
		return out
	}
	out.Family = b.Type()
	out.Heading = &b.Heading
	if err != nil {
		out.Status = "unclassified"
		out.Error = err.Error()
		return out
	}
	if trace {
		out.Traces = reg.Trace(b)
	}

	res, err := reg.Dispatch(b)
	var derr *registry.DecodeError
	switch {
	case errors.Is(err, registry.ErrUnsupported):
		out.Status = "unsupported"
	case errors.As(err, &derr):
		out.Status = "failed"
		out.Error = err.Error()
		out.Result = &registry.Result{Parser: derr.Parser, Recovered: derr.Recovered}
	case err != nil:
		out.Status = "failed"
		out.Error = err.Error()
	default:
		out.Status = "decoded"
		out.Result = res
		for _, rec := range res.Recovered {
			fmt.Fprintf(os.Stderr, "%s: %s: recovered at offset %d: %s (skipped %q)\n",
				source, res.Parser, rec.Offset, rec.Message, rec.Skipped)
		}
	}
	return out
}

// printSimpleTable renders rows under headers with tablewriter.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

func runClassify(args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no designators given")
	}

	reg := registry.Default()
	reg.Sort()

	printSimpleTable(os.Stdout, []string{"TTAAii", "Family", "Designator", "Decoders"}, func(add func(...string)) {
		for _, code := range fs.Args() {
			code = strings.ToUpper(code)
			d, err := wmo.Classify(code)
			if err != nil {
				add(code, "-", err.Error(), "-")
				continue
			}
			var names []string
			for _, p := range reg.AllParsers() {
				if p.Applies(d) {
					names = append(names, p.Name())
				}
			}
			decoders := strings.Join(names, ", ")
			if decoders == "" {
				decoders = "unsupported"
			}
			add(code, wmo.FamilyOf(d).String(), d.String(), decoders)
		}
	})
	return nil
}

func runGoes(args []string) error {
	fs := flag.NewFlagSet("goes", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Output JSON instead of a table")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no file names given")
	}

	if *asJSON {
		out := make(map[string]any, fs.NArg())
		for _, path := range fs.Args() {
			fn, err := goes.Parse(path)
			if err != nil {
				out[path] = map[string]string{"error": err.Error()}
				continue
			}
			out[path] = fn
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printSimpleTable(os.Stdout, []string{"File", "Satellite", "Product", "Sector", "Mode", "Start", "End"}, func(add func(...string)) {
		for _, path := range fs.Args() {
			fn, err := goes.Parse(path)
			if err != nil {
				add(path, "-", err.Error(), "-", "-", "-", "-")
				continue
			}
			add(path,
				fn.Satellite.String(),
				fn.ShortName.String(),
				fn.ShortName.Sector.String(),
				strconv.Itoa(int(fn.ShortName.Mode)),
				fn.Start.Format(time.RFC3339),
				fn.End.Format(time.RFC3339))
		}
	})
	return nil
}
