package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/eedm-api/student-services/api/services"
	"github.com/eedm-api/student-services/db"
	"github.com/eedm-api/student-services/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var fixturesPath string

// fixtures is the layout of a seed file.
type fixtures struct {
	Resources    map[string]interface{} `yaml:"resources"`
	PrivacyRules []db.PrivacyRule       `yaml:"privacyRules"`
	ExtendedData []extendedValue        `yaml:"extendedData"`
}

type extendedValue struct {
	Resource string      `yaml:"resource"`
	ID       string      `yaml:"id"`
	Property string      `yaml:"property"`
	Value    interface{} `yaml:"value"`
}

// seedStore is the part of the database the seed command writes to.
type seedStore interface {
	UpsertRecord(ctx context.Context, resource, id string, payload json.RawMessage) error
	UpsertPrivacyRule(ctx context.Context, rule db.PrivacyRule) error
	UpsertExtendedData(ctx context.Context, resource, id, property string, value json.RawMessage) error
}

type seeder func(ctx context.Context, store seedStore, resource string, node interface{}) (int, error)

var seeders = map[string]seeder{
	services.AcademicStandings.Name:           seedRecords[models.AcademicStanding],
	services.AcademicLevels.Name:              seedRecords[models.AcademicLevel],
	services.AcademicPeriods.Name:             seedRecords[models.AcademicPeriod],
	services.CourseStatuses.Name:              seedRecords[models.CourseStatus],
	services.EnrollmentStatuses.Name:          seedRecords[models.EnrollmentStatus],
	services.GradeSchemes.Name:                seedRecords[models.GradeScheme],
	services.MealPlans.Name:                   seedRecords[models.MealPlan],
	services.MealPlanRequests.Name:            seedRecords[models.MealPlanRequest],
	services.ResidencyTypes.Name:              seedRecords[models.ResidencyType],
	services.SectionRegistrationStatuses.Name: seedRecords[models.SectionRegistrationStatus],
	services.StudentCohorts.Name:              seedRecords[models.StudentCohort],
	services.StudentTypes.Name:                seedRecords[models.StudentType],
	services.StudentTestScores.Name:           seedRecords[models.StudentTestScore],
	services.Terms.Name:                       seedRecords[models.Term],
	services.Tests.Name:                       seedRecords[models.Test],
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load resource records, privacy rules and extended data from a YAML fixture file",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer studentDB.Close()

		data, err := os.ReadFile(fixturesPath)
		if err != nil {
			log.Fatal().Err(err).Str("file", fixturesPath).Msg("Failed to read fixtures")
		}

		f, err := parseFixtures(data)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to parse fixtures")
		}

		if err := seed(context.Background(), studentDB, f); err != nil {
			log.Fatal().Err(err).Msg("Seeding failed")
		}
		log.Info().Msg("Seeding complete")
	},
}

func parseFixtures(data []byte) (*fixtures, error) {
	var f fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error decoding fixtures: %w", err)
	}

	for name := range f.Resources {
		if _, ok := seeders[name]; !ok {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
	}
	for _, rule := range f.PrivacyRules {
		if _, ok := services.Lookup(rule.Resource); !ok {
			return nil, fmt.Errorf("privacy rule for unknown resource %q", rule.Resource)
		}
	}
	return &f, nil
}

func seed(ctx context.Context, store seedStore, f *fixtures) error {
	names := make([]string, 0, len(f.Resources))
	for name := range f.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n, err := seeders[name](ctx, store, name, f.Resources[name])
		if err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
		log.Info().Str("resource", name).Int("records", n).Msg("Records seeded")
	}

	for _, rule := range f.PrivacyRules {
		if err := store.UpsertPrivacyRule(ctx, rule); err != nil {
			return fmt.Errorf("seeding privacy rule %s.%s: %w", rule.Resource, rule.Property, err)
		}
	}

	for _, ext := range f.ExtendedData {
		value, err := json.Marshal(jsonCompatible(ext.Value))
		if err != nil {
			return fmt.Errorf("encoding extended data %s/%s: %w", ext.ID, ext.Property, err)
		}
		if err := store.UpsertExtendedData(ctx, ext.Resource, ext.ID, ext.Property, value); err != nil {
			return fmt.Errorf("seeding extended data %s/%s: %w", ext.ID, ext.Property, err)
		}
	}
	return nil
}

// seedRecords decodes node as a list of T and upserts each record keyed by its identifier.
func seedRecords[T models.Resource](ctx context.Context, store seedStore, resource string, node interface{}) (int, error) {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return 0, err
	}

	var items []T
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return 0, err
	}

	for i, item := range items {
		id := item.Identifier()
		if id == "" {
			return i, fmt.Errorf("record %d has no identifier", i)
		}

		payload, err := json.Marshal(item)
		if err != nil {
			return i, err
		}
		if err := store.UpsertRecord(ctx, resource, id, payload); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// jsonCompatible converts the map[interface{}]interface{} values produced by
// yaml.v2 into types encoding/json accepts.
func jsonCompatible(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = jsonCompatible(val)
		}
		return t
	}
	return v
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&fixturesPath, "file", "fixtures.yaml", "path to the YAML fixture file")
}
