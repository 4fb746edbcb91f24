package app

import (
	"fmt"
	"os"

	"sgb-go/internal/model"
	"sgb-go/internal/sgb"
)

// WriteRecordFile saves an unsaved analysis so a later `share` or
// `save-private` can store it.
func WriteRecordFile(path string, rec model.AnalysisRecord) error {
	data, err := sgb.Encode(rec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data+"\n"), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadRecordFile loads an analysis written by WriteRecordFile.
func ReadRecordFile(path string) (model.AnalysisRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.AnalysisRecord{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return model.AnalysisRecord{}, fmt.Errorf("%s is empty", path)
	}
	rec, err := sgb.Decode(string(data), model.AnalysisRecord{})
	if err != nil {
		return model.AnalysisRecord{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}
