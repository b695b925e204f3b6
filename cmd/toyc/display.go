package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ObscureBrandon/toyc/pkg/codegen"
	"github.com/ObscureBrandon/toyc/pkg/driver"
	toyerrors "github.com/ObscureBrandon/toyc/pkg/errors"
	"github.com/ObscureBrandon/toyc/pkg/icg"
	"github.com/ObscureBrandon/toyc/pkg/optimizer"
)

var (
	headerStyle = pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)
	errorStyle  = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	dimStyle    = pterm.NewStyle(pterm.FgGray)
)

func printHeader(kind, name string) {
	headerStyle.Printf("== %s", kind)
	if name != "" {
		dimStyle.Printf("  %s", name)
	}
	fmt.Println()
}

func printTAC(name string, instructions []icg.Instruction, identifierMap map[string]string) {
	printHeader("three-address code", name)
	for i, instr := range instructions {
		fmt.Printf("%3d  %s\n", i, instr)
	}

	for _, n := range legendOrder(identifierMap) {
		dimStyle.Printf("     %s = %s\n", identifierMap[n], n)
	}
}

// legendOrder returns the source names sorted by the numeric suffix of
// their normalized id, so id2 lists before id10.
func legendOrder(identifierMap map[string]string) []string {
	names := make([]string, 0, len(identifierMap))
	for n := range identifierMap {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return idNumber(identifierMap[names[i]]) < idNumber(identifierMap[names[j]])
	})
	return names
}

func idNumber(normalized string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(normalized, "id"))
	return n
}

func printAssembly(name string, assembly []codegen.AssemblyInstruction) {
	printHeader("assembly", name)
	for _, instr := range assembly {
		fmt.Printf("     %s\n", instr)
	}
}

func printStats(stats optimizer.Stats) {
	printHeader("optimization", "")
	fmt.Printf("     %d -> %d instructions (%.1f%% reduction)\n",
		stats.OriginalInstructionCount,
		stats.OptimizedInstructionCount,
		stats.ReductionPercentage())
	fmt.Printf("     int2float inlined %d, temps eliminated %d, copies propagated %d\n",
		stats.Int2FloatInlined, stats.TempsEliminated, stats.CopiesPropagated)
	fmt.Printf("     algebraic %d, dead code %d\n",
		stats.AlgebraicSimplifications, stats.DeadCodeEliminated)
}

func reportErrors(result *driver.Result) {
	if result == nil {
		return
	}
	for _, e := range result.Errors {
		errorStyle.Printf(" %s Error ", e.Kind())
		fmt.Println()
		fmt.Print(toyerrors.FormatError(e))
	}
}

// formatValue prints integral results without a trailing .0 so program
// output reads the way the source was written.
func formatValue(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
