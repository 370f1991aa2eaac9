package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
	"github.com/hackgods/vet-appointment-scheduling/internal/config"
	"github.com/hackgods/vet-appointment-scheduling/internal/db"
	"github.com/hackgods/vet-appointment-scheduling/internal/events"
	"github.com/hackgods/vet-appointment-scheduling/internal/logger"
	"github.com/hackgods/vet-appointment-scheduling/internal/practitioner"
	redisclient "github.com/hackgods/vet-appointment-scheduling/internal/redis"
)

var specialties = []string{
	"General Practice",
	"Dermatology",
	"Cardiology",
	"Orthopedics",
	"Ophthalmology",
	"Dentistry",
	"Exotic Animals",
	"Oncology",
	"Anesthesiology",
	"Emergency Care",
}

var appointmentTypes = []appointment.Type{
	appointment.TypeConsultation,
	appointment.TypeExam,
	appointment.TypeVaccination,
	appointment.TypeSurgery,
	appointment.TypeFollowUp,
}

func main() {
	practitioners := flag.Int("practitioners", 20, "number of practitioners to create")
	perPractitioner := flag.Int("appointments", 10, "appointments to book per practitioner")
	days := flag.Int("days", 5, "spread appointments over this many days starting tomorrow")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, *practitioners, *perPractitioner, *days); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed complete")
}

func run(cfg config.Config, log *zap.Logger, practitionerCount, perPractitioner, days int) error {
	ctx := context.Background()

	loc, err := cfg.Business.Location()
	if err != nil {
		return err
	}
	policy, err := appointment.NewPolicy(cfg.Business.OpeningHour, cfg.Business.ClosingHour, cfg.Business.SlotMinutes, cfg.Business.CancelNoticeHours, loc)
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := db.ConnectPostgres(connectCtx, cfg.PostgresDSN, cfg.PostgresPool.Options())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	directory := practitioner.NewService(practitioner.NewPgRepository(pool), log.Named("practitioner"))
	scheduler := appointment.NewService(
		appointment.NewPgRepository(pool),
		practitioner.Lookup(directory),
		redisclient.NewLocalLocker(cfg.LockWait),
		policy,
		appointment.WithPublisher(events.NewPgLog(pool)),
		appointment.WithLogger(log.Named("appointment")),
	)

	faker := gofakeit.New(0)

	ids, err := seedPractitioners(ctx, directory, faker, practitionerCount, log)
	if err != nil {
		return err
	}
	return seedAppointments(ctx, scheduler, faker, ids, perPractitioner, days, log)
}

func seedPractitioners(ctx context.Context, svc *practitioner.Service, faker *gofakeit.Faker, count int, log *zap.Logger) ([]uuid.UUID, error) {
	log.Info("seeding practitioners", zap.Int("count", count))

	ids := make([]uuid.UUID, 0, count)
	for len(ids) < count {
		specialty := specialties[faker.Number(0, len(specialties)-1)]
		p, err := svc.Create(ctx, practitioner.Input{
			Name:       faker.Name(),
			Sex:        practitioner.Sex(faker.Gender()),
			NationalID: faker.Numerify("###.###.###-##"),
			Specialty:  &specialty,
		})
		if apperr.Is(err, apperr.DuplicateIdentifier) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create practitioner: %w", err)
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func seedAppointments(ctx context.Context, svc *appointment.Service, faker *gofakeit.Faker, practitioners []uuid.UUID, perPractitioner, days int, log *zap.Logger) error {
	if days <= 0 || perPractitioner <= 0 {
		return nil
	}
	log.Info("seeding appointments", zap.Int("per_practitioner", perPractitioner), zap.Int("days", days))

	policy := svc.Policy()
	today := time.Now().In(policy.Location)

	booked, conflicts := 0, 0
	for _, id := range practitioners {
		for range perPractitioner {
			day := today.AddDate(0, 0, faker.Number(1, days))
			slots := policy.DaySlots(day)
			if len(slots) == 0 {
				continue
			}

			_, err := svc.Schedule(ctx, appointment.ScheduleCommand{
				SubjectID:      uuid.New(),
				PractitionerID: id,
				ScheduledAt:    slots[faker.Number(0, len(slots)-1)],
				Type:           appointmentTypes[faker.Number(0, len(appointmentTypes)-1)],
			})
			switch {
			case err == nil:
				booked++
			case apperr.Is(err, apperr.Conflict):
				conflicts++
			default:
				return fmt.Errorf("schedule appointment: %w", err)
			}
		}
	}

	log.Info("appointments seeded", zap.Int("booked", booked), zap.Int("conflicts_skipped", conflicts))
	return nil
}
