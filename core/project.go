package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mfglab/yieldline/schema"
)

// stopTimeLayout is the timestamp format emitted by all three station
// families. RFC 3339 is accepted as a fallback for re-exported files.
const stopTimeLayout = "2006-01-02 15:04:05"

// projectAttempt normalizes a decoded attempt into a canonical TestRecord.
// Optional fields stay as empty strings; required fields that are empty or
// unparseable make the whole row invalid.
func projectAttempt(raw rawAttempt) (schema.TestRecord, error) {
	serial := strings.TrimSpace(raw.SerialNumber)
	if serial == "" {
		return schema.TestRecord{}, errors.New("empty serial number after projection")
	}

	stopTime, err := parseStopTime(raw.StopTime)
	if err != nil {
		return schema.TestRecord{}, fmt.Errorf("invalid stop time for serial %s: %w", serial, err)
	}

	result := strings.ToUpper(strings.TrimSpace(raw.Result))
	if result == "" {
		result = string(schema.ResultUnknown)
	}

	return schema.TestRecord{
		FixtureID:      strings.TrimSpace(raw.FixtureID),
		StopTime:       stopTime,
		Result:         result,
		SerialNumber:   serial,
		SWVersion:      strings.TrimSpace(raw.SWVersion),
		FailureMessage: strings.TrimSpace(raw.FailureMessage),
		CarrierSerial:  strings.TrimSpace(raw.CarrierSerial),
		TestStation:    strings.TrimSpace(raw.TestStation),
	}, nil
}

// parseStopTime parses the station timestamp formats in order of likelihood.
func parseStopTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(stopTimeLayout, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
