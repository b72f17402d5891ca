// Command qvtrain trains a conditional quantizer codebook from a
// newline-delimited symbol file.
//
// Usage:
//
//	qvtrain -in <lines.txt> -out <codebook.txt> [options]
//
// Each line of the input file holds one training record: whitespace
// separated integers in [0, alphabet), one column per field. All lines
// must have the same field count.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	qvcodec "github.com/qvgen/qvcodec"
	"github.com/qvgen/qvcodec/codebookio"
	"github.com/qvgen/qvcodec/corpus"
	"github.com/qvgen/qvcodec/distortion"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "qvtrain: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("qvtrain", flag.ContinueOnError)
	alphabetSize := fs.Int("alphabet", 64, "symbol alphabet size, 1-64")
	distortionName := fs.String("distortion", "MSE", "distortion measure: MSE, Manhattan, or Lorentz")
	comp := fs.Float64("comp", 1.0, "entropy-budget multiplier applied to each column's empirical entropy")
	clusters := fs.Int("clusters", 1, "number of independent codebooks this run is one of (informational only)")
	in := fs.String("in", "", "path to the newline-delimited training symbol file")
	out := fs.String("out", "", "path to write the trained codebook to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *out == "" {
		fs.Usage()
		return fmt.Errorf("both -in and -out are required")
	}

	measure, err := distortion.ParseMeasure(*distortionName)
	if err != nil {
		return err
	}
	cfg, err := qvcodec.NewConfig(*alphabetSize, measure, *comp, *clusters)
	if err != nil {
		return err
	}

	lines, err := readLines(*in)
	if err != nil {
		return fmt.Errorf("reading training corpus: %w", err)
	}
	c, err := corpus.NewSlice(lines)
	if err != nil {
		return fmt.Errorf("building training corpus: %w", err)
	}

	store, report, err := qvcodec.Generate(context.Background(), c, cfg)
	if err != nil {
		return fmt.Errorf("generating codebook: %w", err)
	}
	for _, cs := range report.Columns {
		fmt.Fprintf(os.Stderr, "qvtrain: column %d: %d contexts, mean rate %.3f bits, mean distortion %.6f\n",
			cs.Column, cs.Contexts, cs.MeanAchievedRate, cs.MeanExpectedDistortion)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := codebookio.Write(f, store); err != nil {
		return fmt.Errorf("writing codebook: %w", err)
	}
	return nil
}

func readLines(path string) ([][]uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines [][]uint8
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		line := make([]uint8, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseUint(field, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("parsing symbol %q: %w", field, err)
			}
			line[i] = uint8(v)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
