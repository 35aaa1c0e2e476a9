// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// ufuncbench times the reduction strategies of the ufunc engine on float64 arrays, for each axis,
// layout and engine configuration, and prints a table with the results.
//
// Usage:
//
//	go run ./cmd/ufuncbench -lengths=64,128,256 -axes=0,2 -repeats=5
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/ufunc"
	"github.com/gomlx/ndarray/pkg/core/ufunc/gonumpath"
	"github.com/gomlx/ndarray/pkg/ops"
	"github.com/gomlx/ndarray/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

var (
	flagLengths = xslices.Flag("lengths", []int{64, 128, 256}, "Comma-separated lengths of the input array.", strconv.Atoi)
	flagAxes    = xslices.Flag("axes", nil, "Comma-separated axes to reduce. Defaults to all axes.", strconv.Atoi)
	flagRepeats = flag.Int("repeats", 5, "Number of timed repetitions of each case, after one warm-up run.")
	flagWorkers = flag.Int("workers", -1, "Parallelism used by the parallel engine: -1 for unlimited.")
	flagQuiet   = flag.Bool("quiet", false, "Don't display a progress bar.")
	flagColor   = flag.Bool("color", true, "Colorize the table, if the terminal supports it.")
)

// benchEngine is one of the engine configurations compared.
type benchEngine struct {
	name   string
	engine *ufunc.Engine[float64]
}

func engines() []benchEngine {
	sequential := must.M1(ufunc.NewWithConfig[float64]("fastpath=none"))
	contiguous := must.M1(ufunc.NewWithConfig[float64]("fastpath=contiguous"))
	gonum := must.M1(ufunc.NewWithConfig[float64]("fastpath=none")).
		WithFastPath(ufunc.Chain[float64](gonumpath.Float64{}, ufunc.Contiguous[float64]{}))
	parallel := must.M1(ufunc.NewWithConfig[float64]("fastpath=none,minparallel=0")).
		WithParallelism(*flagWorkers)
	return []benchEngine{
		{"sequential", sequential},
		{"contiguous", contiguous},
		{"gonum", gonum},
		{"parallel", parallel},
	}
}

// benchCase is one timed reduction.
type benchCase struct {
	layout string
	input  *ndarray.NdArray[float64]
	axis   int
	engine benchEngine
	op     ufunc.BinaryOp[float64]
}

type result struct {
	benchCase
	perOp time.Duration
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if !*flagColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	lengths := *flagLengths
	if len(lengths) == 0 {
		klog.Exitf("-lengths must have at least one value")
	}
	contiguous := ndarray.Iota[float64](lengths...)
	reversedAxes := xslices.Iota(0, len(lengths))
	slices.Reverse(reversedAxes)
	reversedLengths := slices.Clone(lengths)
	slices.Reverse(reversedLengths)
	transposedBase := ndarray.Iota[float64](reversedLengths...)
	layouts := []struct {
		name  string
		input *ndarray.NdArray[float64]
	}{
		{"contiguous", contiguous},
		{"transposed", must.M1(transposedBase.Transpose(reversedAxes...))},
	}

	axes := *flagAxes
	if len(axes) == 0 {
		axes = xslices.Iota(0, len(lengths))
	}

	var cases []benchCase
	for _, layout := range layouts {
		for _, axis := range axes {
			for _, e := range engines() {
				for _, op := range []ufunc.BinaryOp[float64]{ops.Add[float64]{}, ops.Max[float64]{}} {
					cases = append(cases, benchCase{layout: layout.name, input: layout.input, axis: axis, engine: e, op: op})
				}
			}
		}
	}

	var bar *progressbar.ProgressBar
	if !*flagQuiet {
		bar = progressbar.NewOptions(len(cases),
			progressbar.OptionSetDescription("reductions"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish())
	}
	results := make([]result, 0, len(cases))
	for _, c := range cases {
		perOp, err := run(c)
		if err != nil {
			klog.Exitf("case layout=%s axis=%d engine=%s failed: %+v", c.layout, c.axis, c.engine.name, err)
		}
		results = append(results, result{benchCase: c, perOp: perOp})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	fmt.Println(report(lengths, results))
}

// run times the case, and returns the average time per reduction.
func run(c benchCase) (time.Duration, error) {
	outLengths := c.input.Lengths()
	outLengths[c.axis] = 1
	output := ndarray.New[float64](outLengths...)
	if err := c.engine.engine.Reduce(c.op, c.axis, c.input, output); err != nil {
		return 0, err
	}
	start := time.Now()
	for range *flagRepeats {
		if err := c.engine.engine.Reduce(c.op, c.axis, c.input, output); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(max(*flagRepeats, 1)), nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
)

// shapeLabel formats lengths as "64x128x256".
func shapeLabel(lengths []int) string {
	if len(lengths) == 0 {
		return "scalar"
	}
	return strings.Join(xslices.Map(lengths, strconv.Itoa), "x")
}

func report(lengths []int, results []result) string {
	size := xslices.Product(lengths)
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerStyle
			case col >= 4:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		Headers("Layout", "Axis", "Engine", "Op", "Time/op", "Elements/s")
	for _, r := range results {
		perSecond := float64(size) / max(r.perOp, time.Nanosecond).Seconds()
		table.Row(r.layout, strconv.Itoa(r.axis), r.engine.name, fmt.Sprintf("%T", r.op),
			r.perOp.String(), humanize.SIWithDigits(perSecond, 2, ""))
	}
	title := fmt.Sprintf("Reductions of %s %s (%s elements, %s), %d repeats",
		shapeLabel(lengths), dtypes.Float64, humanize.Comma(int64(size)),
		humanize.Bytes(uint64(dtypes.Float64.SizeForDimensions(lengths...))), *flagRepeats)
	return title + "\n" + table.String()
}
