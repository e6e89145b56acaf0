package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"tutor-registry/internal/config"
	"tutor-registry/internal/domain/registry"
	"tutor-registry/internal/infrastructure/database"
	"tutor-registry/internal/infrastructure/repository"
	"tutor-registry/pkg/logger"

	"github.com/spf13/cobra"
)

// seedCmd inserts a small set of demo subjects with offer sets, for local
// development against a freshly migrated database.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo subjects and offered slots",
	Run:   runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	cfg := config.Get()

	db, err := database.NewConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.Username,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	subjectRepo := repository.NewSubjectRepository(db)
	slotRepo := repository.NewSubjectAvailabilityRepository(db)

	demo := []struct {
		name  string
		slots []uint
	}{
		{"Mathematics", []uint{1, 3, 5}},
		{"English", []uint{2, 4}},
		{"Science", []uint{1, 2, 3}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, d := range demo {
		subject := &registry.Subject{Name: d.name}
		if err := subjectRepo.Create(ctx, subject); err != nil {
			logger.Error("Failed to seed subject %s: %v", d.name, err)
			os.Exit(1)
		}

		slots := make([]registry.SubjectAvailability, 0, len(d.slots))
		for _, availabilityID := range d.slots {
			slots = append(slots, registry.SubjectAvailability{
				SubjectID:      subject.ID,
				AvailabilityID: availabilityID,
			})
		}
		if err := slotRepo.CreateBatch(ctx, slots); err != nil {
			logger.Error("Failed to seed slots for %s: %v", d.name, err)
			os.Exit(1)
		}

		fmt.Printf("Seeded subject %s (id %d) with %d slots\n", d.name, subject.ID, len(slots))
	}

	fmt.Println("Seeding completed")
}
