// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package breakdown

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// A Config describes a breakdown report: where to read benchmark
// results, which benchmark to report on, and the tables to print.
type Config struct {
	// Input is the path of the benchmark results file.
	Input string `yaml:"input"`

	// Benchmark is the exact name of the benchmark to report on.
	Benchmark string `yaml:"benchmark"`

	// Tables are computed and printed in order.
	Tables []TableConfig `yaml:"tables"`
}

// A TableConfig describes one table of a report.
//
// Each row of a table is a timing counter of the benchmark, expressed
// in milliseconds and as a fraction of the table's denominator. The
// denominator is, in order of precedence, the counter named by
// DenominatorKey, the label sum of the earlier table named by
// DenominatorTable, or the label sum of this table.
type TableConfig struct {
	// ID identifies the table. It must be unique within a Config
	// and is used to name chart files.
	ID string `yaml:"id"`

	// Title, if non-empty, is printed on its own line before the
	// table.
	Title string `yaml:"title"`

	// Header requests a column header row.
	Header bool `yaml:"header"`

	// Labels are the counter names, one per row.
	Labels []string `yaml:"labels"`

	DenominatorKey   string `yaml:"denominator_key"`
	DenominatorTable string `yaml:"denominator_table"`

	Footer Footer `yaml:"footer"`
}

// A Footer selects the summary line printed after a table.
type Footer string

const (
	// NoFooter prints nothing after the table.
	NoFooter Footer = ""

	// CoverageFooter prints the sum of the table's rows, the
	// benchmark's real time, and their ratio. It shows how much of
	// the benchmark a curated selection of counters explains.
	CoverageFooter Footer = "coverage"

	// SumFooter prints the sum of the rows' fractions. For a
	// breakdown of a parent phase into sub-phases, this is close
	// to 100% when the sub-phases are exhaustive.
	SumFooter Footer = "sum"
)

// DefaultInput and DefaultBenchmark locate the ClientIVC benchmark
// in an op-count-time build.
const (
	DefaultInput     = "build-op-count-time/client_ivc_bench.json"
	DefaultBenchmark = "ClientIVCBench/Full/6"
)

// DefaultConfig returns the ClientIVC breakdown report.
func DefaultConfig() *Config {
	return &Config{
		Input:     DefaultInput,
		Benchmark: DefaultBenchmark,
		Tables: []TableConfig{
			{
				// An independent set of functions accounting
				// for most of the benchmark's real time.
				ID:     "kept",
				Header: true,
				Labels: []string{
					"construct_circuits(t)",
					"ProverInstance(Circuit&)(t)",
					"UltraCircuitBuilder_<Arithmetization>::finalize_circuit",
					"Polynomial::copy_constructor",
					"construct_sorted_list_polynomials",
					"construct_databus_polynomials",
					"ProvingKey_",
					"ExecutionTrace_::populate",
					"ProtogalaxyProver::fold_instances(t)",
					"Decider::construct_proof(t)",
					"ECCVMComposer::create_prover(t)",
					"GoblinTranslatorComposer::create_prover(t)",
					"ECCVMProver::construct_proof(t)",
					"GoblinTranslatorProver::construct_proof(t)",
					"Goblin::merge(t)",
				},
				Footer: CoverageFooter,
			},
			{
				ID:     "major",
				Title:  "Major contributors:",
				Header: true,
				Labels: []string{
					"commit(t)",
					"compute_combiner(t)",
					"compute_perturbator(t)",
					"compute_univariate(t)",
				},
				DenominatorTable: "kept",
			},
			{
				ID:    "fold_instances",
				Title: "Breakdown of ProtogalaxyProver::fold_instances:",
				Labels: []string{
					"ProtoGalaxyProver_::preparation_round(t)",
					"ProtoGalaxyProver_::perturbator_round(t)",
					"ProtoGalaxyProver_::combiner_quotient_round(t)",
					"ProtoGalaxyProver_::accumulator_update_round(t)",
				},
				DenominatorKey: "ProtogalaxyProver::fold_instances(t)",
				Footer:         SumFooter,
			},
			{
				ID:    "prover_instance",
				Title: "Breakdown of ProverInstance(Circuit&):",
				Labels: []string{
					"UltraCircuitBuilder_<Arithmetization>::finalize_circuit(t)",
					"UltraProvingKey(t)",
					"ExecutionTrace_::populate(t)",
					"construct_databus_polynomials(t)",
					"construct_table_polynomials(t)",
					"construct_sorted_list_polynomials(t)",
				},
				DenominatorKey: "ProverInstance(Circuit&)(t)",
				Footer:         SumFooter,
			},
			{
				ID:    "populate",
				Title: "Breakdown of ExecutionTrace_::populate(t):",
				Labels: []string{
					"ExecutionTrace_::add_ecc_op_wires_to_proving_key(t)",
					"ExecutionTrace_::add_memory_records_to_proving_key(t)",
					"ExecutionTrace_::compute_permutation_argument_polynomials(t)",
					"ExecutionTrace_::construct_trace_data(t)",
					"ExecutionTrace_::add_wires_and_selectors_to_proving_key(t)",
				},
				DenominatorKey: "ExecutionTrace_::populate(t)",
				Footer:         SumFooter,
			},
		},
	}
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validate checks that c is well-formed. It does not check c against
// any benchmark record.
func (c *Config) Validate() error {
	if c.Benchmark == "" {
		return errors.New("config: no benchmark name")
	}
	if len(c.Tables) == 0 {
		return errors.New("config: no tables")
	}
	seen := make(map[string]bool)
	for i, t := range c.Tables {
		switch {
		case t.ID == "":
			return fmt.Errorf("config: table %d: missing id", i)
		case !validID.MatchString(t.ID):
			return fmt.Errorf("config: table %q: id may only contain letters, digits, '_', '.', and '-'", t.ID)
		case seen[t.ID]:
			return fmt.Errorf("config: table %q: duplicate id", t.ID)
		case len(t.Labels) == 0:
			return fmt.Errorf("config: table %q: no labels", t.ID)
		case t.DenominatorKey != "" && t.DenominatorTable != "":
			return fmt.Errorf("config: table %q: both denominator_key and denominator_table set", t.ID)
		case t.DenominatorTable != "" && !seen[t.DenominatorTable]:
			return fmt.Errorf("config: table %q: denominator_table %q does not name an earlier table", t.ID, t.DenominatorTable)
		}
		switch t.Footer {
		case NoFooter, CoverageFooter, SumFooter:
		default:
			return fmt.Errorf("config: table %q: unknown footer %q", t.ID, t.Footer)
		}
		seen[t.ID] = true
	}
	return nil
}

// LoadConfig reads a YAML report configuration from path. Fields the
// file does not set keep their values from DefaultConfig; a "tables"
// list replaces the default tables entirely.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
