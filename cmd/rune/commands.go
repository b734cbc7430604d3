package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ketiboldiais/amicus/pkg/cas"
	"github.com/ketiboldiais/amicus/pkg/ioctx"
	"github.com/ketiboldiais/amicus/pkg/rune"
)

func tokensCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a Rune file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpFile(cmd, *cfg, args[0], (*rune.Engine).Tokens)
		},
	}
}

func astCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the syntax tree of a Rune file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpFile(cmd, *cfg, args[0], (*rune.Engine).AST)
		},
	}
}

func dumpFile(cmd *cobra.Command, cfg Config, path string, dump func(*rune.Engine, string) (string, error)) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := dump(rune.New(rune.DefaultConfig()), string(source))
	if err != nil {
		return fmt.Errorf("%s", paint(cfg, rune.AsError(err).Format(path, string(source))))
	}
	fmt.Fprint(ioctx.Stdout(cmd.Context()), out)
	return nil
}

func checkCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse and resolve Rune files without running them",
		Example: `  # Check every script in a directory
  rune check examples/*.rune`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkFiles(cmd, *cfg, args)
		},
	}
}

// checkFiles checks each file in its own goroutine and reports every
// failure, in argument order.
func checkFiles(cmd *cobra.Command, cfg Config, paths []string) error {
	failures := make([]string, len(paths))
	var mu sync.Mutex
	failed := 0

	var eg errgroup.Group
	eg.SetLimit(8)
	for i, path := range paths {
		eg.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			if err := checkSource(string(source)); err != nil {
				mu.Lock()
				failures[i] = paint(cfg, rune.AsError(err).Format(path, string(source)))
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	stderr := ioctx.Stderr(cmd.Context())
	for _, f := range failures {
		if f != "" {
			fmt.Fprint(stderr, f)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	fmt.Fprintf(ioctx.Stdout(cmd.Context()), "%d files ok\n", len(paths))
	return nil
}

func checkSource(source string) error {
	prog, err := rune.Parse(source)
	if err != nil {
		return err
	}
	_, err = rune.Resolve(prog, true)
	return err
}

func simplifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "simplify <expr>",
		Short:   "Simplify an algebraic expression",
		Example: `  rune simplify "x + x + 2*x^2*x"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printAlgebra(cmd, args[0], cas.Simplify)
		},
	}
}

func expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "expand <expr>",
		Short:   "Expand products and powers of sums",
		Example: `  rune expand "(x + 1)^3"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printAlgebra(cmd, args[0], cas.Expand)
		},
	}
}

func deriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "derive <expr> <var>",
		Short:   "Differentiate an expression with respect to a variable",
		Example: `  rune derive "x^2 * sin(x)" x`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := cas.Parse(args[1])
			if err != nil {
				return fmt.Errorf("parsing variable: %w", err)
			}
			sym, ok := x.(*cas.Sym)
			if !ok {
				return fmt.Errorf("derive expects a symbol as its variable, got %s", x)
			}
			return printAlgebra(cmd, args[0], func(u cas.Expr) cas.Expr {
				return cas.Derive(u, sym)
			})
		},
	}
}

func degCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deg <expr> <var>...",
		Short:   "Degree of a polynomial in the given variables",
		Example: `  rune deg "3*x^2*y + y^3" x y`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := make([]cas.Expr, 0, len(args)-1)
			for _, arg := range args[1:] {
				v, err := cas.Parse(arg)
				if err != nil {
					return fmt.Errorf("parsing variable %q: %w", arg, err)
				}
				vars = append(vars, v)
			}
			return printAlgebra(cmd, args[0], func(u cas.Expr) cas.Expr {
				return cas.GPEDeg(u, vars)
			})
		},
	}
}

func printAlgebra(cmd *cobra.Command, src string, fn func(cas.Expr) cas.Expr) error {
	u, err := cas.Parse(src)
	if err != nil {
		return fmt.Errorf("parsing expression: %w", err)
	}
	fmt.Fprintln(ioctx.Stdout(cmd.Context()), fn(u))
	return nil
}
