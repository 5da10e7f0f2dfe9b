package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/yungbote/careerladder-backend/internal/app"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/services"
)

func main() {
	var (
		file      string
		companyID string
		actorID   string
		dryRun    bool
	)
	pflag.StringVarP(&file, "file", "f", "", "catalog YAML file (- for stdin)")
	pflag.StringVar(&companyID, "company", "", "company_id to import into (overrides the document)")
	pflag.StringVar(&actorID, "actor", "", "user id recorded as created_by")
	pflag.BoolVar(&dryRun, "dry-run", false, "parse and summarize without writing")
	pflag.Parse()

	if file == "" {
		fmt.Println("--file is required")
		pflag.Usage()
		os.Exit(2)
	}
	doc, err := readDocument(file)
	if err != nil {
		fmt.Printf("read catalog: %v\n", err)
		os.Exit(1)
	}
	if c := strings.TrimSpace(companyID); c != "" {
		doc.CompanyID = c
	}
	if dryRun {
		levels, skills := 0, 0
		for _, m := range doc.Maps {
			levels += len(m.Levels)
			for _, l := range m.Levels {
				skills += len(l.Skills)
			}
		}
		fmt.Printf("dry-run: maps=%d levels=%d skills=%d kpis=%d\n", len(doc.Maps), levels, skills, len(doc.KPIs))
		return
	}

	actor := identity.Actor{Role: identity.RoleAdmin}
	if strings.TrimSpace(actorID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(actorID))
		if err != nil {
			fmt.Printf("invalid --actor: %v\n", err)
			os.Exit(2)
		}
		actor.ID = id
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	res, err := application.Services.Catalog.Import(context.Background(), actor, doc)
	if err != nil {
		application.Log.Error("catalog import failed", "error", err)
		application.Close()
		os.Exit(1)
	}
	fmt.Printf("imported: maps=%d levels=%d skills=%d kpis=%d\n", res.Maps, res.Levels, res.Skills, res.KPIs)
}

func readDocument(path string) (*services.CatalogDocument, error) {
	if path == "-" {
		return services.ParseCatalogYAML(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return services.ParseCatalogYAML(f)
}
