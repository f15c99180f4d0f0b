/*
Copyright © 2020 ConsenSys

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f4core/f4matrix/gb/builder"
	"github.com/f4core/f4matrix/logger"
	"github.com/f4core/f4matrix/ring"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "builds the F4 matrix for a toy two-polynomial S-pair over F_charac[x,y]",
	Run:   cmdBuild,
}

var (
	fCharac  uint32
	fWorkers int
	fQuantum int
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Uint32Var(&fCharac, "charac", 5, "prime field characteristic")
	buildCmd.Flags().IntVar(&fWorkers, "workers", 4, "row-builder worker count")
	buildCmd.Flags().IntVar(&fQuantum, "quantum", 64, "output matrix memory quantum")
}

func cmdBuild(cmd *cobra.Command, args []string) {
	log := logger.Logger()

	d := ring.NewDense(2, fCharac, 0)
	basis := ring.NewDenseBasis(d)

	// f0 = x^2 - y
	f0 := ring.NewDensePoly(d, [][]uint16{{2, 0}, {0, 1}}, []ring.Scalar{1, fCharac - 1})
	// f1 = x*y - 1
	f1 := ring.NewDensePoly(d, [][]uint16{{1, 1}, {0, 0}}, []ring.Scalar{1, fCharac - 1})
	basis.Add(f0)
	basis.Add(f1)

	b := builder.New(basis, fWorkers, fQuantum)
	b.AddPoly(f0)
	b.AddPoly(f1)
	b.AddSPair(f0, f1)

	qm, err := b.BuildAndClear()
	if err != nil {
		log.Error().Err(err).Msg("build failed")
		fmt.Println("error:", err)
		return
	}

	log.Info().
		Int("leftColumns", len(qm.LeftMonomials)).
		Int("rightColumns", len(qm.RightMonomials)).
		Int("topRows", qm.TopLeft.RowCount()).
		Int("bottomRows", qm.BottomLeft.RowCount()).
		Msg("matrix built")

	for i, m := range qm.LeftMonomials {
		fmt.Printf("left col %d: exp=%v\n", i, d.Exp(m))
	}
	for i, m := range qm.RightMonomials {
		fmt.Printf("right col %d: exp=%v\n", i, d.Exp(m))
	}
	for r := 0; r < qm.TopLeft.RowCount(); r++ {
		li, ls := qm.TopLeft.Row(r)
		ri, rs := qm.TopRight.Row(r)
		fmt.Printf("top row %d: left=%v/%v right=%v/%v\n", r, li, ls, ri, rs)
	}
	for r := 0; r < qm.BottomLeft.RowCount(); r++ {
		li, ls := qm.BottomLeft.Row(r)
		ri, rs := qm.BottomRight.Row(r)
		fmt.Printf("bottom row %d: left=%v/%v right=%v/%v\n", r, li, ls, ri, rs)
	}
}
