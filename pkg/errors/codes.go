package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
// Codes are prefixed by the module that raises them so that a single code is
// enough to locate the failing subsystem in logs and metrics.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeOK             ErrorCode = "OK"
	ErrCodeUnknown        ErrorCode = "COMMON_000"
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeValidation     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeSerialization  ErrorCode = "COMMON_004"
	ErrCodeNotImplemented ErrorCode = "COMMON_005"
)

// Feature-extraction error codes
const (
	ErrCodeUnknownFacilityType ErrorCode = "FEAT_001"
	ErrCodeUnknownHazardType   ErrorCode = "FEAT_002"
	ErrCodeUnknownCrimeType    ErrorCode = "FEAT_003"
	ErrCodeInvalidCoordinates  ErrorCode = "FEAT_004"
)

// Valuation (AVM) error codes
const (
	ErrCodeAVMInputInvalid ErrorCode = "AVM_001"
	ErrCodeModelArtifact   ErrorCode = "AVM_002"
	ErrCodeModelUntrained  ErrorCode = "AVM_003"
)

// Scoring error codes
const (
	ErrCodeWeightInvalid ErrorCode = "SCR_001"
)

// Recommendation error codes
const (
	ErrCodeCorpusLoad       ErrorCode = "REC_001"
	ErrCodeSeedNotInCorpus  ErrorCode = "REC_002"
	ErrCodeRadiusInvalid    ErrorCode = "REC_003"
	ErrCodeTopKInvalid      ErrorCode = "REC_004"
	ErrCodeMixRatioInvalid  ErrorCode = "REC_005"
	ErrCodeInteractionParse ErrorCode = "REC_006"
)

// Explanation error codes
const (
	ErrCodeAttributionFailed ErrorCode = "EXP_001"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal engine error",
	ErrCodeValidation:     "validation failed",
	ErrCodeNotFound:       "resource not found",
	ErrCodeSerialization:  "serialization failed",
	ErrCodeNotImplemented: "not implemented",

	ErrCodeUnknownFacilityType: "unknown facility type",
	ErrCodeUnknownHazardType:   "unknown hazard type",
	ErrCodeUnknownCrimeType:    "unknown crime type",
	ErrCodeInvalidCoordinates:  "invalid geographic coordinates",

	ErrCodeAVMInputInvalid: "invalid valuation input",
	ErrCodeModelArtifact:   "failed to load model artifact",
	ErrCodeModelUntrained:  "valuation model is not trained",

	ErrCodeWeightInvalid: "invalid scoring weights",

	ErrCodeCorpusLoad:       "failed to load recommendation corpus",
	ErrCodeSeedNotInCorpus:  "seed property not found in corpus",
	ErrCodeRadiusInvalid:    "search radius must be positive",
	ErrCodeTopKInvalid:      "topK must be positive",
	ErrCodeMixRatioInvalid:  "fusion ratio must be in [0,1]",
	ErrCodeInteractionParse: "failed to parse interaction log",

	ErrCodeAttributionFailed: "feature attribution failed",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
