package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/HouseOfSounds/VitaeEMR/internal/db"
	"github.com/HouseOfSounds/VitaeEMR/internal/logging"
	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
}

var appointmentTypes = []string{"consultation", "follow-up", "checkup", "procedure", "telehealth"}

var noteTypes = []string{
	records.NoteProgress,
	records.NoteDiagnosis,
	records.NoteTreatmentPlan,
	records.NoteLabResults,
	records.NoteConsultation,
	records.NotePendingReport,
}

var medications = []string{"Amoxicillin", "Lisinopril", "Metformin", "Atorvastatin", "Ibuprofen", "Omeprazole"}

type seedOptions struct {
	dsn      string
	doctors  int
	patients int
	seed     uint64
	migrate  bool
}

func main() {
	_ = godotenv.Load()

	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Fill the database with demo staff and patient records",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection string")
	cmd.Flags().IntVar(&opts.doctors, "doctors", 10, "number of staff accounts to create")
	cmd.Flags().IntVar(&opts.patients, "patients", 200, "number of patients to create")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "fake data seed, 0 picks a random one")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending migrations first")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts seedOptions) error {
	logger := logging.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if opts.dsn == "" {
		return errors.New("POSTGRES_DSN or --dsn is required")
	}
	if opts.doctors < 1 {
		return errors.New("--doctors must be at least 1")
	}

	pool, err := db.ConnectPostgres(ctx, db.PoolOptions{DSN: opts.dsn, MaxConns: 4})
	if err != nil {
		return err
	}
	defer pool.Close()

	if opts.migrate {
		if _, err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	s := &seeder{
		repos:  records.NewPgRepositories(pool),
		faker:  gofakeit.New(opts.seed),
		logger: logger,
	}

	doctorIDs, err := s.seedStaff(ctx, opts.doctors)
	if err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}
	if err := s.seedPatients(ctx, opts.patients, doctorIDs); err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}

	logger.Info().Int("staff", len(doctorIDs)).Int("patients", opts.patients).Msg("seed complete")
	return nil
}

type seeder struct {
	repos  records.Repositories
	faker  *gofakeit.Faker
	logger zerolog.Logger
}

func (s *seeder) seedStaff(ctx context.Context, count int) ([]string, error) {
	s.logger.Info().Int("count", count).Msg("seeding staff")

	roles := []records.Role{records.RoleDoctor, records.RoleDoctor, records.RoleNurse}
	ids := make([]string, 0, count)

	for i := 0; i < count; i++ {
		role := roles[i%len(roles)]
		if i == 0 {
			role = records.RoleAdmin
		}

		var specialty *string
		if role == records.RoleDoctor {
			specialty = ptr(s.faker.RandomString(specialties))
		}

		u, err := s.repos.Users.Create(ctx, records.StaffIDPrefix+uuid.NewString(), records.NewStaff{
			FirstName: s.faker.FirstName(),
			LastName:  s.faker.LastName(),
			Email:     fmt.Sprintf("staff%d.%s", i, s.faker.Email()),
			Role:      role,
			Specialty: specialty,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}

	return ids, nil
}

func (s *seeder) seedPatients(ctx context.Context, count int, doctorIDs []string) error {
	s.logger.Info().Int("count", count).Msg("seeding patients")

	statuses := []records.PatientStatus{records.PatientActive, records.PatientActive, records.PatientFollowUp, records.PatientInactive}
	today := time.Now()

	for i := 0; i < count; i++ {
		dob := s.faker.DateRange(today.AddDate(-90, 0, 0), today.AddDate(-1, 0, 0)).Format(time.DateOnly)
		addr := s.faker.Address()

		p, err := s.repos.Patients.Create(ctx, records.NewPatient{
			FirstName:        s.faker.FirstName(),
			LastName:         s.faker.LastName(),
			Email:            ptr(s.faker.Email()),
			Phone:            ptr(s.faker.Phone()),
			DateOfBirth:      &dob,
			Gender:           ptr(s.faker.Gender()),
			Address:          ptr(addr.Address),
			EmergencyContact: ptr(s.faker.Name()),
			EmergencyPhone:   ptr(s.faker.Phone()),
			Status:           statuses[i%len(statuses)],
		})
		if err != nil {
			return err
		}

		if err := s.seedHistory(ctx, p.ID, doctorIDs[i%len(doctorIDs)], today); err != nil {
			return err
		}

		if (i+1)%50 == 0 {
			s.logger.Info().Int("done", i+1).Int("total", count).Msg("patients seeded")
		}
	}

	return nil
}

// seedHistory gives a patient a few visits around today, each with a note,
// and a prescription tied to the latest visit.
func (s *seeder) seedHistory(ctx context.Context, patientID int64, doctorID string, today time.Time) error {
	visits := s.faker.Number(1, 3)
	var lastAppt int64

	for v := 0; v < visits; v++ {
		day := today.AddDate(0, 0, s.faker.Number(-60, 14))
		status := records.AppointmentCompleted
		if !day.Before(today) {
			status = records.AppointmentScheduled
		}

		appt, err := s.repos.Appointments.Create(ctx, records.NewAppointment{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      day.Format(time.DateOnly),
			Time:      fmt.Sprintf("%02d:%02d", s.faker.Number(8, 16), s.faker.RandomInt([]int{0, 15, 30, 45})),
			Type:      s.faker.RandomString(appointmentTypes),
			Status:    status,
		})
		if err != nil {
			return err
		}
		lastAppt = appt.ID

		if _, err := s.repos.Notes.Create(ctx, records.NewClinicalNote{
			PatientID:     patientID,
			DoctorID:      doctorID,
			AppointmentID: &appt.ID,
			Title:         s.faker.Sentence(4),
			Content:       s.faker.Sentence(24),
			Type:          s.faker.RandomString(noteTypes),
		}); err != nil {
			return err
		}
	}

	_, err := s.repos.Prescriptions.Create(ctx, records.NewPrescription{
		PatientID:        patientID,
		DoctorID:         doctorID,
		AppointmentID:    &lastAppt,
		MedicationName:   s.faker.RandomString(medications),
		Dosage:           fmt.Sprintf("%dmg", s.faker.RandomInt([]int{5, 10, 20, 250, 500})),
		Frequency:        s.faker.RandomString([]string{"once daily", "twice daily", "as needed"}),
		Duration:         fmt.Sprintf("%d days", s.faker.Number(5, 30)),
		StartDate:        today.Format(time.DateOnly),
		RefillsRemaining: ptr(s.faker.Number(0, 3)),
	})
	return err
}

func ptr[T any](v T) *T {
	return &v
}
