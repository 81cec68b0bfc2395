package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "REC_003", ErrCodeRadiusInvalid.String())
}

func TestModuleForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeInternal, "COMMON"},
		{ErrCodeUnknownHazardType, "FEAT"},
		{ErrCodeModelArtifact, "AVM"},
		{ErrCodeWeightInvalid, "SCR"},
		{ErrCodeSeedNotInCorpus, "REC"},
		{ErrCodeAttributionFailed, "EXP"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ModuleForCode(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "search radius must be positive", DefaultMessageForCode(ErrCodeRadiusInvalid))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

func TestEveryCodeFollowsModuleNumberShape(t *testing.T) {
	shape := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeMessage {
		assert.True(t, shape.MatchString(code.String()), "code %s", code)
	}
}
