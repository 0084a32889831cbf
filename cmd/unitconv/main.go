// Command unitconv converts quantities between units from the command line.
// It is a thin layer over the registry and quantity packages; all unit
// algebra lives in core.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/MySchizoBuddy/pint/core/dimension"
	"github.com/MySchizoBuddy/pint/core/format"
	"github.com/MySchizoBuddy/pint/core/quantity"
	"github.com/MySchizoBuddy/pint/core/unit"
	"github.com/MySchizoBuddy/pint/internal/config"
	"github.com/MySchizoBuddy/pint/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for unitconv.
var CLI struct {
	// Global flags
	Config      string   `name:"config" short:"c" help:"Config file path" type:"path"`
	Definitions []string `name:"definitions" short:"d" help:"Extra definition files loaded after the built-in set" type:"path"`
	Style       string   `name:"style" help:"Output style (plain, pretty, latex)" enum:"plain,pretty,latex," default:""`
	Abbreviated bool     `name:"abbreviated" short:"a" help:"Render unit symbols instead of names"`
	Precision   int      `name:"precision" short:"p" help:"Significant digits in output (0 = full)"`
	Verbose     bool     `name:"verbose" short:"v" help:"Enable debug logging"`

	Convert ConvertCmd `cmd:"" help:"Convert a quantity to target units"`
	Parse   ParseCmd   `cmd:"" help:"Parse an expression and print its canonical form"`
	Base    BaseCmd    `cmd:"" help:"Reduce a quantity to base units"`
	Define  DefineCmd  `cmd:"" help:"Check a unit definition and print its resolution"`
	Dims    DimsCmd    `cmd:"" help:"List known base dimensions"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// appState carries the loaded registry and output settings into commands.
type appState struct {
	reg  *unit.Registry
	opts format.Options
	prec int
}

func (a *appState) formatMagnitude(v float64) string {
	prec := -1
	if a.prec > 0 {
		prec = a.prec
	}
	return strconv.FormatFloat(v, 'g', prec, 64)
}

// ConvertCmd converts a quantity expression to target units.
type ConvertCmd struct {
	Quantity []string `arg:"" help:"Quantity expression, e.g. '3 m/s'"`
	To       string   `name:"to" short:"t" required:"" help:"Target unit expression"`
}

func (c *ConvertCmd) Run(app *appState) error {
	input := strings.Join(c.Quantity, " ")
	q, err := quantity.Parse(app.reg, input)
	if err != nil {
		return err
	}
	res, err := q.To(c.To)
	if err != nil {
		return err
	}
	logging.Conversion(input, c.To, res.Magnitude())
	fmt.Printf("%s %s\n", app.formatMagnitude(res.Magnitude()), format.Units(app.reg, res.Units(), app.opts))
	return nil
}

// ParseCmd parses an expression and prints the canonical container.
type ParseCmd struct {
	Expression []string `arg:"" help:"Unit or quantity expression"`
}

func (c *ParseCmd) Run(app *appState) error {
	input := strings.Join(c.Expression, " ")
	mag, units, err := app.reg.ParseExpression(input)
	if err != nil {
		return err
	}
	dims, err := app.reg.Dimensionality(units)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", app.formatMagnitude(mag), format.Units(app.reg, units, app.opts))
	fmt.Printf("dimensionality: %s\n", dims)
	return nil
}

// BaseCmd reduces a quantity to the registry's base units.
type BaseCmd struct {
	Quantity []string `arg:"" help:"Quantity expression"`
}

func (c *BaseCmd) Run(app *appState) error {
	q, err := quantity.Parse(app.reg, strings.Join(c.Quantity, " "))
	if err != nil {
		return err
	}
	res, err := q.ToBase()
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", app.formatMagnitude(res.Magnitude()), format.Units(app.reg, res.Units(), app.opts))
	return nil
}

// DefineCmd registers a definition for this invocation and prints how it
// resolves, which makes a handy syntax checker for definition files.
type DefineCmd struct {
	Definition string `arg:"" help:"Definition line, e.g. 'furlong = 220 * yard = fur'"`
}

func (c *DefineCmd) Run(app *appState) error {
	if err := app.reg.Define(c.Definition); err != nil {
		return err
	}
	name, _, _ := strings.Cut(c.Definition, "=")
	name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "-"))
	units, err := app.reg.Get(name)
	if err != nil {
		// Prefixes and dimensions register but are not units.
		fmt.Printf("defined %s\n", name)
		return nil
	}
	factor, base, err := app.reg.BaseUnits(units)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %s %s\n", name, app.formatMagnitude(factor), format.Units(app.reg, base, app.opts))
	return nil
}

// DimsCmd lists the base dimensions and their anchoring units.
type DimsCmd struct{}

func (c *DimsCmd) Run(app *appState) error {
	dims := app.reg.Dimensions()
	names := make([]string, 0, len(dims))
	for dim := range dims {
		names = append(names, string(dim))
	}
	sort.Strings(names)
	for _, dim := range names {
		fmt.Printf("%-18s %s\n", dim, dims[dimension.Dimension(dim)])
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *appState) error {
	fmt.Printf("unitconv %s\n", version)
	return nil
}

func parseStyle(s string) format.Style {
	switch s {
	case "pretty":
		return format.Pretty
	case "latex":
		return format.Latex
	default:
		return format.Plain
	}
}

// buildRegistry loads the built-in definitions plus any extra files from
// the config and flags.
func buildRegistry(cfg *config.Config, extra []string) (*unit.Registry, error) {
	reg, err := unit.Default(unit.Options{AutoconvertOffsetToBaseUnit: cfg.AutoconvertOffset})
	if err != nil {
		return nil, err
	}
	files := append(append([]string{}, cfg.DefinitionFiles...), extra...)
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening definitions %s: %w", path, err)
		}
		err = reg.LoadDefinitions(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("loading definitions %s: %w", path, err)
		}
		logging.DefinitionsLoaded(path)
	}
	return reg, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("unitconv"),
		kong.Description("Unit-aware quantity conversion"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if CLI.Verbose {
		logging.InitLogger(logging.LevelDebug, logging.FormatText)
	}

	cfg, err := config.Load(CLI.Config)
	ctx.FatalIfErrorf(err)

	if CLI.Style != "" {
		cfg.Format.Style = CLI.Style
	}
	if CLI.Abbreviated {
		cfg.Format.Abbreviated = true
	}
	if CLI.Precision != 0 {
		cfg.Precision = CLI.Precision
	}

	reg, err := buildRegistry(cfg, CLI.Definitions)
	ctx.FatalIfErrorf(err)

	app := &appState{
		reg: reg,
		opts: format.Options{
			Style:       parseStyle(cfg.Format.Style),
			Abbreviated: cfg.Format.Abbreviated,
		},
		prec: cfg.Precision,
	}
	err = ctx.Run(app)
	ctx.FatalIfErrorf(err)
}
