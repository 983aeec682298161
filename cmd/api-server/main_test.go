package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandServesByDefault(t *testing.T) {
	cases := []struct {
		args    []string
		migrate bool
	}{
		{args: []string{}, migrate: false},
		{args: []string{"serve"}, migrate: false},
		{args: []string{"serve", "--migrate"}, migrate: true},
	}

	for _, tc := range cases {
		var calls []bool
		cmd := newRootCmd(func(migrate bool) error {
			calls = append(calls, migrate)
			return nil
		})
		cmd.SetArgs(tc.args)

		require.NoError(t, cmd.Execute(), tc.args)
		assert.Equal(t, []bool{tc.migrate}, calls, tc.args)
	}
}
