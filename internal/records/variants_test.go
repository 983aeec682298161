package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariants(t *testing.T) {
	role, err := ParseRole("nurse")
	require.NoError(t, err)
	assert.Equal(t, RoleNurse, role)
	_, err = ParseRole("surgeon")
	assert.Error(t, err)

	ps, err := ParsePatientStatus("follow-up")
	require.NoError(t, err)
	assert.Equal(t, PatientFollowUp, ps)
	_, err = ParsePatientStatus("deceased")
	assert.Error(t, err)

	as, err := ParseAppointmentStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, AppointmentInProgress, as)
	_, err = ParseAppointmentStatus("")
	assert.Error(t, err)

	rs, err := ParsePrescriptionStatus("discontinued")
	require.NoError(t, err)
	assert.Equal(t, PrescriptionDiscontinued, rs)
	_, err = ParsePrescriptionStatus("paused")
	assert.Error(t, err)
}
