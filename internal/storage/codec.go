package storage

import (
	"encoding/json"
	"errors"

	"synapsis/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeExperiment(e model.ExperimentRecord) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeExperiment(data []byte) (model.ExperimentRecord, error) {
	var experiment model.ExperimentRecord
	if err := json.Unmarshal(data, &experiment); err != nil {
		return model.ExperimentRecord{}, err
	}
	if err := checkVersion(experiment.VersionedRecord); err != nil {
		return model.ExperimentRecord{}, err
	}
	return experiment, nil
}

func EncodeAccuracySeries(series []float64) ([]byte, error) {
	return json.Marshal(series)
}

func DecodeAccuracySeries(data []byte) ([]float64, error) {
	var series []float64
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func EncodeStepMetrics(metrics []model.StepMetrics) ([]byte, error) {
	return json.Marshal(metrics)
}

func DecodeStepMetrics(data []byte) ([]model.StepMetrics, error) {
	var metrics []model.StepMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}
