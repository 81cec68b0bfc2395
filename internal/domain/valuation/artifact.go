package valuation

import (
	"encoding/json"
	"os"

	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// LoadEnsemble reads and validates a serialized ensemble artifact from the
// JSON file at path.  The returned model is immutable and may be shared by
// any number of concurrent analyses.
//
// Artifact format:
//
//	{
//	  "version": "2.0.0",
//	  "feature_names": ["living_area_sqft", ...],
//	  "trees": [{"nodes": [{"feature":0,"threshold":1600,"left":1,"right":2,"value":210000}, ...]}, ...]
//	}
func LoadEnsemble(path string) (*EnsembleModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeModelArtifact,
			"failed to read model artifact").WithDetail(path)
	}
	var model EnsembleModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeModelArtifact,
			"failed to decode model artifact").WithDetail(path)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}
