// Command martfetch browses mart catalogs and fetches result tables
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/composer"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/pkg/biomart"
)

type cfg struct {
	URL       string
	Schema    string
	List      string
	Database  string
	Species   string
	Dataset   string
	Attrs     []string
	FilterRaw string
	Homologs  []string
	HomFields []string
	AllRows   bool
	Format    string
	Out       string
	Timeout   time.Duration
}

func parseFlags() cfg {
	var c cfg
	var attrs, homologs, homFields string

	flag.StringVar(&c.URL, "url", biomart.DefaultBaseURL, "Mart service base URL")
	flag.StringVar(&c.Schema, "schema", "default", "Virtual schema name")
	flag.StringVar(&c.List, "list", "", "List catalog instead of fetching: databases, datasets, attributes, filters or homologs")
	flag.StringVar(&c.Database, "db", "", "Database (mart) name, fuzzy matched")
	flag.StringVar(&c.Species, "species", "", "Species name to narrow datasets, fuzzy matched")
	flag.StringVar(&c.Dataset, "dataset", "", "Dataset name; overrides -db/-species")
	flag.StringVar(&attrs, "attrs", "", "Attributes CSV; empty uses dataset defaults")
	flag.StringVar(&c.FilterRaw, "filters", "", "Filters as a JSON object, e.g. '{\"chromosome_name\":\"1\"}'")
	flag.StringVar(&homologs, "homologs", "", "Homolog species CSV")
	flag.StringVar(&homFields, "homology-fields", "", "Per-species homology fields CSV")
	flag.BoolVar(&c.AllRows, "all-rows", false, "Keep duplicate rows instead of asking the service to drop them")
	flag.StringVar(&c.Format, "format", "csv", "Output format: csv, tsv or json")
	flag.StringVar(&c.Out, "o", "", "Output file; stdout when empty")
	flag.DurationVar(&c.Timeout, "timeout", 3*time.Minute, "Per-call timeout")

	flag.Parse()

	c.Attrs = splitCSV(attrs)
	c.Homologs = splitCSV(homologs)
	c.HomFields = splitCSV(homFields)
	return c
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}

func main() {
	c := parseFlags()

	client, err := biomart.New(c.URL,
		biomart.WithVirtualSchema(c.Schema),
		biomart.WithTimeout(c.Timeout))
	if err != nil {
		log.Fatalf("martfetch: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout+30*time.Second)
	defer cancel()

	if c.List != "" {
		if err := runList(ctx, client, c); err != nil {
			log.Fatalf("martfetch: %v", err)
		}
		return
	}
	if err := runFetch(ctx, client, c); err != nil {
		log.Fatalf("martfetch: %v", err)
	}
}

func ref(c cfg) biomart.Ref {
	return biomart.Ref{Dataset: c.Dataset, Database: c.Database, Species: c.Species}
}

func runList(ctx context.Context, client *biomart.Client, c cfg) error {
	switch c.List {
	case "databases":
		dbs, err := client.ListDatabases(ctx)
		if err != nil {
			return err
		}
		for _, d := range dbs {
			fmt.Printf("%s\t%s\n", d.Name, d.DisplayName)
		}

	case "datasets":
		if c.Database == "" {
			return fmt.Errorf("-list datasets needs -db")
		}
		var ds []model.Dataset
		var err error
		if c.Species != "" {
			ds, err = client.FindDatasets(ctx, c.Database, c.Species)
		} else {
			ds, err = client.Datasets(ctx, c.Database)
		}
		if err != nil {
			return err
		}
		for _, d := range ds {
			fmt.Printf("%s\t%s\n", d.Name, d.DisplayName)
		}

	case "attributes":
		attrs, err := client.Attributes(ctx, ref(c))
		if err != nil {
			return err
		}
		for _, a := range attrs {
			mark := " "
			if a.Default {
				mark = "*"
			}
			fmt.Printf("%s %s\t%s\n", mark, a.Name, a.DisplayName)
		}

	case "filters":
		filters, err := client.Filters(ctx, ref(c))
		if err != nil {
			return err
		}
		for _, f := range filters {
			fmt.Printf("%s\t%s\t%s\n", f.Name, f.Kind().String(), f.DisplayName)
		}

	case "homologs":
		info, err := client.Homology(ctx, ref(c))
		if err != nil {
			return err
		}
		fmt.Println("species:")
		for _, s := range info.Species {
			fmt.Printf("  %s\t%s\n", s.Name, s.DisplayName)
		}
		fmt.Println("fields:")
		for _, f := range info.Fields {
			fmt.Printf("  %s\n", f)
		}

	default:
		return fmt.Errorf("unknown -list value %q", c.List)
	}
	return nil
}

func runFetch(ctx context.Context, client *biomart.Client, c cfg) error {
	var filters map[string]any
	if strings.TrimSpace(c.FilterRaw) != "" {
		if err := json.Unmarshal([]byte(c.FilterRaw), &filters); err != nil {
			return fmt.Errorf("parse -filters: %w", err)
		}
	}

	tab, err := client.Fetch(ctx, biomart.Request{
		Ref:        ref(c),
		Attributes: c.Attrs,
		Filters:    filters,
		HomSpecies: c.Homologs,
		HomQuery:   c.HomFields,
		AllRows:    c.AllRows,
	})
	if err != nil {
		return err
	}

	res, err := composer.Compose(tab, composer.NegotiationInput{
		OutputFormat:  c.Format,
		DefaultFormat: composer.FormatCSV,
	})
	if err != nil {
		return err
	}

	if c.Out == "" {
		_, err = os.Stdout.Write(res.Body)
		return err
	}
	if err := os.WriteFile(c.Out, res.Body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", len(tab.Rows), c.Out)
	return nil
}
