package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mipsym/symretope/explain"
	"github.com/mipsym/symretope/symretope"
)

func main() {
	var (
		verbose    bool
		nopeek     bool
		maxOrder   int
		maxOrderN  int
		checkSol   string
		sepaPoint  string
		explainWhy bool
	)
	flag.BoolVar(&verbose, "verbose", false, "sets verbose mode on")
	flag.BoolVar(&nopeek, "nopeek", false, "disables the peek driver")
	flag.IntVar(&maxOrder, "maxorder", 10000, "maximal group order before truncating tracked powers")
	flag.IntVar(&maxOrderN, "maxordernvars", 5000000, "maximal group order times support size before truncating")
	flag.StringVar(&checkSol, "check", "", "comma-separated 0/1 solution to check instead of propagating")
	flag.StringVar(&sepaPoint, "sepa", "", "comma-separated fractional point to separate instead of propagating")
	flag.BoolVar(&explainWhy, "explain", false, "on cutoff, print a minimal infeasible fixing subset")
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Syntax : %s [options] file.retope\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Args()[0]

	pb, err := parse(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse problem: %v\n", err)
		os.Exit(1)
	}

	opts := symretope.DefaultOptions()
	opts.Peek = !nopeek
	opts.MaxOrder = maxOrder
	opts.MaxOrderTimesN = maxOrderN

	nd := symretope.NewNode(len(pb.names))
	for i, name := range pb.names {
		nd.SetName(i, name)
	}
	vars := make([]int, len(pb.names))
	for i := range vars {
		vars[i] = i
	}
	c, err := symretope.New(nd, vars, pb.perm, true, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create constraint: %v\n", err)
		os.Exit(1)
	}
	if c == nil {
		fmt.Printf("c constraint is trivially satisfied\ns DIDNOTFIND\n")
		return
	}
	nd.Watch(c)
	if verbose {
		fmt.Printf("c parsed symretope over %d variables, group order %d\n", c.N(), c.Perm().Order())
		if c.Truncated() {
			fmt.Printf("c warning: tracking only %d powers, propagation is incomplete\n", c.NPerms())
		}
	}

	switch {
	case checkSol != "":
		runCheck(c, pb, checkSol)
	case sepaPoint != "":
		runSeparate(c, pb, sepaPoint)
	default:
		runPropagate(nd, c, pb, verbose, explainWhy)
	}
}

type problem struct {
	names   []string
	perm    []int
	fixings map[int]int // by parsed variable index
}

func parse(path string) (*problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()

	pb := &problem{fixings: make(map[int]int)}
	indexOf := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "symretope(") {
			if pb.names != nil {
				return nil, fmt.Errorf("more than one constraint in %q", path)
			}
			pb.names, pb.perm, err = symretope.ParseConstraint(line)
			if err != nil {
				return nil, err
			}
			for i, name := range pb.names {
				indexOf[name] = i
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "fix" {
			return nil, fmt.Errorf("expected \"fix <var> <0|1>\", got %q", line)
		}
		v, ok := indexOf[fields[1]]
		if !ok {
			return nil, fmt.Errorf("unknown variable name %q", fields[1])
		}
		val, err := strconv.Atoi(fields[2])
		if err != nil || (val != 0 && val != 1) {
			return nil, fmt.Errorf("fixing value must be 0 or 1, got %q", fields[2])
		}
		pb.fixings[v] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pb.names == nil {
		return nil, fmt.Errorf("no constraint found in %q", path)
	}
	return pb, nil
}

func runPropagate(nd *symretope.Node, c *symretope.Constraint, pb *problem, verbose, explainWhy bool) {
	for v, val := range pb.fixings {
		if err := nd.Fix(v, val); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	status := c.Propagate()
	fmt.Printf("s %v\n", status)
	if status == symretope.Cutoff {
		if explainWhy {
			core, err := explain.Infeasible(pb.perm, pb.fixings, explain.Options{Verbose: verbose})
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not explain cutoff: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("c minimal infeasible fixing set:\n")
			for v, val := range core {
				fmt.Printf("c   fix %s %d\n", pb.names[v], val)
			}
		}
		return
	}
	fmt.Printf("v")
	for i, name := range pb.names {
		switch {
		case nd.Lb(i) > 0:
			fmt.Printf(" %s=1", name)
		case nd.Ub(i) < 1:
			fmt.Printf(" %s=0", name)
		default:
			fmt.Printf(" %s=*", name)
		}
	}
	fmt.Printf("\n")
	if verbose {
		fmt.Printf("c nb fixings: %d\nc nb peek fixings: %d\n", c.Stats.NbFixings, c.Stats.NbPeekFixings)
	}
}

func runCheck(c *symretope.Constraint, pb *problem, sol string) {
	vals, err := parseInts(sol)
	if err != nil || len(vals) != len(pb.names) {
		fmt.Fprintf(os.Stderr, "invalid solution %q\n", sol)
		os.Exit(1)
	}
	if ok, power, entry := c.Check(vals); !ok {
		fmt.Printf("s INFEASIBLE\nc power %d has first non-constant pair (0,1) at entry %d\n", power, entry)
	} else {
		fmt.Printf("s FEASIBLE\n")
	}
}

func runSeparate(c *symretope.Constraint, pb *problem, point string) {
	fields := strings.Split(point, ",")
	vals := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid point %q\n", point)
			os.Exit(1)
		}
		vals[i] = v
	}
	if len(vals) != len(pb.names) {
		fmt.Fprintf(os.Stderr, "point has %d values for %d variables\n", len(vals), len(pb.names))
		os.Exit(1)
	}
	cuts := c.SeparateCovers(vals)
	fmt.Printf("c %d violated cover(s)\n", len(cuts))
	for _, cut := range cuts {
		var sb strings.Builder
		for i, v := range cut.Vars {
			if i > 0 {
				sb.WriteString(" + ")
			}
			fmt.Fprintf(&sb, "%g*%s", cut.Coefs[i], pb.names[v])
		}
		fmt.Printf("c   %s <= %g\n", sb.String(), cut.Rhs)
	}
}

func parseInts(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	vals := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
