package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/FJORD/internal/adapter"
	"github.com/copyleftdev/FJORD/internal/optimization"
	"github.com/copyleftdev/FJORD/internal/problems"
)

var problemsCmd = &cobra.Command{
	Use:   "problems [name]",
	Short: "List the built-in problems or show one problem's parameter space",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range problems.Names() {
				fmt.Println(name)
			}
			return nil
		}
		return describeProblem(args[0])
	},
}

func init() {
	rootCmd.AddCommand(problemsCmd)
}

func describeProblem(name string) error {
	m, err := problems.Get(name)
	if err != nil {
		return err
	}

	ad, err := adapter.New(m)
	if err != nil {
		return fmt.Errorf("model cannot be adapted: %w", err)
	}

	space := ad.Space()
	fmt.Printf("Problem:     %s\n", name)
	fmt.Printf("Parameters:  %d\n", space.Len())
	fmt.Printf("Constraints: %d\n", ad.NumConstraints())
	for _, pname := range space.Names() {
		p, _ := space.Get(pname)
		fmt.Printf("  %s: %s\n", pname, describeParameter(p))
	}
	return nil
}

func describeParameter(p optimization.Parameter) string {
	switch p := p.(type) {
	case optimization.Scalar:
		kind := "scalar"
		if p.Integer {
			kind = "integer"
		}
		return fmt.Sprintf("%s in [%g, %g]", kind, p.Lower, p.Upper)
	case optimization.Choice:
		opts := make([]string, len(p.Options))
		for i, o := range p.Options {
			opts[i] = fmt.Sprintf("%g", o)
		}
		return fmt.Sprintf("choice of {%s}", strings.Join(opts, ", "))
	}
	return "unknown"
}
