package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRunConfigValid(t *testing.T) {
	require.NoError(t, DefaultRunConfig().Valid())
}

func TestRunConfigRejectsZeroMinClients(t *testing.T) {
	c := DefaultRunConfig()
	c.MinClients = 0
	require.ErrorIs(t, c.Valid(), ErrMinClientsTooLow)
}

func TestRunConfigRejectsInitBelowMin(t *testing.T) {
	c := DefaultRunConfig()
	c.MinClients = 5
	c.InitMinClients = 2
	require.ErrorIs(t, c.Valid(), ErrInitMinClientsTooLow)
}

func TestRunConfigRejectsVerificationPercentOver100(t *testing.T) {
	c := DefaultRunConfig()
	c.VerificationPercent = 101
	require.ErrorIs(t, c.Valid(), ErrVerificationPercentBad)
}

func TestRunConfigAggregatesMultipleErrors(t *testing.T) {
	c := DefaultRunConfig()
	c.MinClients = 0
	c.GlobalBatchSize = 0
	c.TotalSteps = 0

	err := c.Valid()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMinClientsTooLow)
	require.ErrorIs(t, err, ErrGlobalBatchSizeTooLow)
	require.ErrorIs(t, err, ErrTotalStepsTooLow)
}
