package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/importer"
	"github.com/mv4digital/chuvinha/internal/logger"
	"github.com/mv4digital/chuvinha/internal/store/postgrest"
)

func main() {
	var (
		kind    = flag.String("kind", "", "Import kind: despesas or receitas")
		input   = flag.String("input", "", "Input file (.xlsx or delimited text)")
		sheet   = flag.String("sheet", "", "Worksheet name for .xlsx input (default: first sheet)")
		year    = flag.Int("year", time.Now().Year(), "Year for dates that carry no year")
		service = flag.String("service", string(domain.ServiceVariados), "Service key for revenue rows")
		expKind = flag.String("expense-kind", string(domain.ExpenseVariable), "Expense kind: fixed, variable or provision")
		commit  = flag.Bool("commit", false, "Insert rows (default is a dry run)")
	)
	flag.Parse()

	log := logger.New()

	if *input == "" {
		log.Fatal().Msg("-input is required")
	}
	userID := os.Getenv("IMPORT_USER_ID")
	if userID == "" {
		log.Fatal().Msg("IMPORT_USER_ID is required")
	}

	provider, err := postgrest.NewProvider(postgrest.Config{
		URL:            os.Getenv("SUPABASE_URL"),
		AnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
		ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure Supabase client")
	}
	st, err := provider.ElevatedImporter()
	if err != nil {
		log.Fatal().Err(err).Msg("Importer needs the service-role key")
	}

	rows, err := importer.ReadRows(*input, *sheet)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Failed to read input")
	}

	parsed, skipped := importer.ParseRows(rows, *year)
	for _, s := range skipped {
		log.Warn().Int("line", s.Line).Str("reason", s.Reason).Msg("Row skipped")
	}

	imp := importer.New(st, log)
	summary, err := imp.Run(context.Background(), parsed, importer.Options{
		Kind:        importer.Kind(*kind),
		UserID:      userID,
		Service:     domain.ServiceKey(*service),
		ExpenseKind: domain.ExpenseKind(*expKind),
		Commit:      *commit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	log.Info().
		Int("parsed", summary.Parsed).
		Int("duplicates", summary.Duplicates).
		Int("skipped", len(summary.Skipped)).
		Int("inserted", summary.Inserted).
		Bool("committed", *commit).
		Msg("Import finished")
}
