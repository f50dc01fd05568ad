// Copyright (C) 2026 The depict Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command depictl assembles a small filter tree from the command line
// (load ions, range them, bin them into a spectrum, optionally recolour
// them) and runs a single Tree.Refresh pass, mirroring the teacher's
// cmd/sneller one-shot query runner but over this module's filter
// pipeline instead of a query plan.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/apttools/depict/filter"
	"github.com/apttools/depict/filters"
	"github.com/apttools/depict/rangefile"
	"github.com/apttools/depict/stream"
	"github.com/apttools/depict/tree"
)

var (
	dashIon      string
	dashRange    string
	dashBinWidth float64
	dashOut      string
	dashColour   bool
	dashSave     string
	dashBudget   float64
)

func init() {
	flag.StringVar(&dashIon, "ion", "", "ion position file to load (.pos)")
	flag.StringVar(&dashRange, "range", "", "range file to apply (.rng, .rrng or .env; format auto-detected; no ranging if omitted)")
	flag.Float64Var(&dashBinWidth, "bin-width", 0.5, "spectrum histogram bin width")
	flag.StringVar(&dashOut, "o", "", "file for the spectrum's x/y dump (default stdout)")
	flag.BoolVar(&dashColour, "colour", false, "also run the ion-colour recolouring branch")
	flag.StringVar(&dashSave, "save-state", "", "write the assembled filter tree as XML to this path")
	flag.Float64Var(&dashBudget, "cache-budget", tree.DefaultCacheBudgetPercent, "cache budget as a percent of available RAM")
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, "depictl:", err)
	os.Exit(1)
}

func main() {
	flag.Parse()

	if dashIon == "" {
		fmt.Fprintln(os.Stderr, "usage: depictl -ion <file.pos> [-range <file>] [-bin-width N] [-colour] [-o out.xy]")
		os.Exit(1)
	}

	load := filters.NewDataLoad()
	load.Path = dashIon
	root := tree.NewNode(load)

	rangeNode := root
	if dashRange != "" {
		rf, err := rangefile.Open(dashRange, rangefile.FormatAuto)
		if err != nil {
			exit(fmt.Errorf("loading range file: %w", err))
		}
		r := &filters.Range{Table: rf.Table}
		rangeNode = tree.NewNode(r)
		root.Children = append(root.Children, rangeNode)
	}

	spec := filters.NewSpectrum()
	spec.BinWidth = float32(dashBinWidth)
	specNode := tree.NewNode(spec)
	rangeNode.Children = append(rangeNode.Children, specNode)

	var colourNode *tree.Node
	if dashColour {
		ic := filters.NewIonColour()
		colourNode = tree.NewNode(ic)
		rangeNode.Children = append(rangeNode.Children, colourNode)
	}

	t := &tree.Tree{
		Root:               root,
		Logger:             log.New(os.Stderr, "depictl: ", 0),
		CacheBudgetPercent: dashBudget,
	}

	ctx := &filter.RefreshContext{
		Progress: func(done int) bool { return true },
	}
	if err := t.Refresh(ctx); err != nil {
		exit(fmt.Errorf("refresh: %w", err))
	}

	if dashSave != "" {
		f, err := os.Create(dashSave)
		if err != nil {
			exit(fmt.Errorf("saving state: %w", err))
		}
		defer f.Close()
		if err := tree.Save(f, t); err != nil {
			exit(fmt.Errorf("saving state: %w", err))
		}
	}

	out := os.Stdout
	if dashOut != "" {
		f, err := os.Create(dashOut)
		if err != nil {
			exit(fmt.Errorf("creating %s: %w", dashOut, err))
		}
		defer f.Close()
		out = f
	}

	for _, p := range specNode.Delivered() {
		ps, ok := p.(*stream.PlotStream)
		if !ok {
			continue
		}
		for _, b := range ps.Bins {
			fmt.Fprintf(out, "%g %d\n", (b.Lo+b.Hi)/2, b.Count)
		}
	}

	if colourNode != nil {
		var ions, bars int
		for _, p := range colourNode.Delivered() {
			switch p.(type) {
			case *stream.IonStream:
				ions++
			case *stream.DrawStream:
				bars++
			}
		}
		fmt.Fprintf(os.Stderr, "depictl: ion-colour: %d colour buckets, colour bar present: %t\n", ions, bars > 0)
	}
}
