package core

import (
	"encoding/json"
	"fmt"

	"github.com/mfglab/yieldline/schema"
)

// rawAttempt is the canonical field mapping produced by decoding one payload.
// All values are still raw strings; projection handles typing and trimming.
type rawAttempt struct {
	FixtureID      string
	StopTime       string
	Result         string
	SerialNumber   string
	SWVersion      string
	FailureMessage string
	CarrierSerial  string
	TestStation    string
}

// payloadDecoder converts one vendor payload string into a canonical attempt.
type payloadDecoder func(payload string) (rawAttempt, error)

// payloadDecoders maps each station family to its decoder variant. Resolved
// once per file, never re-derived per row.
var payloadDecoders = map[schema.StationFamily]payloadDecoder{
	schema.FamilyRES: decodeResPayload,
	schema.FamilyDVA: decodeDvaPayload,
	schema.FamilyTSP: decodeTspPayload,
}

// decodeAttempt routes a payload string to the decoder for the given family.
func decodeAttempt(family schema.StationFamily, payload string) (rawAttempt, error) {
	decoder, ok := payloadDecoders[family]
	if !ok {
		return rawAttempt{}, fmt.Errorf("no decoder for station family %q", family)
	}
	return decoder(payload)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decodeResPayload handles RES station exports, which use PascalCase keys.
func decodeResPayload(payload string) (rawAttempt, error) {
	var doc struct {
		TesterID     *string `json:"TesterID"`
		EndTime      *string `json:"EndTime"`
		TestResult   *string `json:"TestResult"`
		SerialNumber *string `json:"SerialNumber"`
		SWVersion    *string `json:"SWVersion"`
		FailMessage  *string `json:"FailMessage"`
		CarrierSN    *string `json:"CarrierSN"`
		StationName  *string `json:"StationName"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return rawAttempt{}, fmt.Errorf("malformed RES payload: %w", err)
	}
	if doc.SerialNumber == nil {
		return rawAttempt{}, fmt.Errorf("RES payload missing required key %q", "SerialNumber")
	}
	if doc.TestResult == nil {
		return rawAttempt{}, fmt.Errorf("RES payload missing required key %q", "TestResult")
	}
	if doc.EndTime == nil {
		return rawAttempt{}, fmt.Errorf("RES payload missing required key %q", "EndTime")
	}
	return rawAttempt{
		FixtureID:      stringOrEmpty(doc.TesterID),
		StopTime:       *doc.EndTime,
		Result:         *doc.TestResult,
		SerialNumber:   *doc.SerialNumber,
		SWVersion:      stringOrEmpty(doc.SWVersion),
		FailureMessage: stringOrEmpty(doc.FailMessage),
		CarrierSerial:  stringOrEmpty(doc.CarrierSN),
		TestStation:    stringOrEmpty(doc.StationName),
	}, nil
}

// decodeDvaPayload handles DVA station exports, which use camelCase keys.
func decodeDvaPayload(payload string) (rawAttempt, error) {
	var doc struct {
		TesterID     *string `json:"testerId"`
		EndTime      *string `json:"endTime"`
		TestResult   *string `json:"testResult"`
		SerialNumber *string `json:"serialNumber"`
		SWVersion    *string `json:"swVersion"`
		FailMessage  *string `json:"failMessage"`
		CarrierSN    *string `json:"carrierSn"`
		StationName  *string `json:"stationName"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return rawAttempt{}, fmt.Errorf("malformed DVA payload: %w", err)
	}
	if doc.SerialNumber == nil {
		return rawAttempt{}, fmt.Errorf("DVA payload missing required key %q", "serialNumber")
	}
	if doc.TestResult == nil {
		return rawAttempt{}, fmt.Errorf("DVA payload missing required key %q", "testResult")
	}
	if doc.EndTime == nil {
		return rawAttempt{}, fmt.Errorf("DVA payload missing required key %q", "endTime")
	}
	return rawAttempt{
		FixtureID:      stringOrEmpty(doc.TesterID),
		StopTime:       *doc.EndTime,
		Result:         *doc.TestResult,
		SerialNumber:   *doc.SerialNumber,
		SWVersion:      stringOrEmpty(doc.SWVersion),
		FailureMessage: stringOrEmpty(doc.FailMessage),
		CarrierSerial:  stringOrEmpty(doc.CarrierSN),
		TestStation:    stringOrEmpty(doc.StationName),
	}, nil
}

// decodeTspPayload handles TSP station exports, which use snake_case keys
// except for the legacy "Carrier_sn" spelling. The result key is absent in
// some payload shapes; those rows report an explicit UNKNOWN result rather
// than an inferred one.
func decodeTspPayload(payload string) (rawAttempt, error) {
	var doc struct {
		FixtureID    *string `json:"fixture_id"`
		StopTime     *string `json:"stop_time"`
		Result       *string `json:"result"`
		SerialNumber *string `json:"serial_number"`
		SWVersion    *string `json:"sw_version"`
		FailureMsg   *string `json:"failure_message"`
		CarrierSN    *string `json:"Carrier_sn"`
		TestStation  *string `json:"test_station"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return rawAttempt{}, fmt.Errorf("malformed TSP payload: %w", err)
	}
	if doc.SerialNumber == nil {
		return rawAttempt{}, fmt.Errorf("TSP payload missing required key %q", "serial_number")
	}
	if doc.StopTime == nil {
		return rawAttempt{}, fmt.Errorf("TSP payload missing required key %q", "stop_time")
	}
	result := string(schema.ResultUnknown)
	if doc.Result != nil {
		result = *doc.Result
	}
	return rawAttempt{
		FixtureID:      stringOrEmpty(doc.FixtureID),
		StopTime:       *doc.StopTime,
		Result:         result,
		SerialNumber:   *doc.SerialNumber,
		SWVersion:      stringOrEmpty(doc.SWVersion),
		FailureMessage: stringOrEmpty(doc.FailureMsg),
		CarrierSerial:  stringOrEmpty(doc.CarrierSN),
		TestStation:    stringOrEmpty(doc.TestStation),
	}, nil
}
