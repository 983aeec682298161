package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblerEmbedsSharedRowsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.patient(t, "Ada", "Lovelace")
	a1 := f.appointment(t, p.ID, "2024-06-01", "10:00")
	a2 := f.appointment(t, p.ID, "2024-06-01", "11:00")

	out, err := NewAssembler(f.repos).Appointments(ctx, []Appointment{*a1, *a2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Same(t, out[0].Patient, out[1].Patient)
	assert.Equal(t, a1.ID, out[0].ID)
	assert.Equal(t, a2.ID, out[1].ID)
}

func TestAssemblerEmptyInput(t *testing.T) {
	out, err := NewAssembler(NewMemoryRepositories()).Prescriptions(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAssemblerMissingTargetFailsWholeRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.patient(t, "Ada", "Lovelace")
	a := f.appointment(t, p.ID, "2024-06-01", "10:00")

	empty := newMemoryRepositories(time.Now)
	broken := NewAssembler(Repositories{
		Users:        f.repos.Users,
		Patients:     empty.Patients,
		Appointments: f.repos.Appointments,
	})

	_, err := broken.Appointments(ctx, []Appointment{*a})
	assert.ErrorIs(t, err, ErrInconsistentReadModel)

	noAppts := NewAssembler(Repositories{
		Users:        f.repos.Users,
		Patients:     f.repos.Patients,
		Appointments: empty.Appointments,
	})
	_, err = noAppts.ClinicalNotes(ctx, []ClinicalNote{{PatientID: p.ID, DoctorID: "doc-1", AppointmentID: &a.ID}})
	assert.ErrorIs(t, err, ErrInconsistentReadModel)
}
