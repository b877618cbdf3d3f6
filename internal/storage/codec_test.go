package storage

import (
	"errors"
	"reflect"
	"testing"

	"synapsis/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	want := testRun("run-1", "exp-1")

	payload, err := EncodeRun(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeRun(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", got, want)
	}
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := testRun("run-1", "")
	run.SchemaVersion = CurrentSchemaVersion + 1

	payload, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRun(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestExperimentCodecRejectsVersionMismatch(t *testing.T) {
	experiment := model.ExperimentRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion + 1},
		ID:              "exp-1",
	}
	payload, err := EncodeExperiment(experiment)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeExperiment(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestStamp(t *testing.T) {
	v := Stamp()
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		t.Fatalf("unexpected stamp: %+v", v)
	}
}

func TestDecodeRunRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeRun([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
