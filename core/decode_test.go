package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfglab/yieldline/schema"
)

func TestDecodeAttempt_ValidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		family  schema.StationFamily
		payload string
	}{
		{
			name:   "RES PascalCase keys",
			family: schema.FamilyRES,
			payload: `{"TesterID":"FX-01","EndTime":"2026-05-10 08:30:00","TestResult":"PASS",` +
				`"SerialNumber":"SN1","SWVersion":"1.2.3","FailMessage":"","CarrierSN":"CAR-9","StationName":"RES-A"}`,
		},
		{
			name:   "DVA camelCase keys",
			family: schema.FamilyDVA,
			payload: `{"testerId":"FX-01","endTime":"2026-05-10 08:30:00","testResult":"PASS",` +
				`"serialNumber":"SN1","swVersion":"1.2.3","failMessage":"","carrierSn":"CAR-9","stationName":"DVA-1"}`,
		},
		{
			name:   "TSP snake_case keys",
			family: schema.FamilyTSP,
			payload: `{"fixture_id":"FX-01","stop_time":"2026-05-10 08:30:00","result":"PASS",` +
				`"serial_number":"SN1","sw_version":"1.2.3","failure_message":"","Carrier_sn":"CAR-9","test_station":"TSP-E"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := decodeAttempt(tc.family, tc.payload)
			require.NoError(t, err)

			assert.Equal(t, "SN1", raw.SerialNumber)
			assert.Equal(t, "PASS", raw.Result)
			assert.Equal(t, "2026-05-10 08:30:00", raw.StopTime)
			assert.Equal(t, "FX-01", raw.FixtureID)
			assert.Equal(t, "CAR-9", raw.CarrierSerial)
		})
	}
}

func TestDecodeAttempt_MalformedJSON(t *testing.T) {
	for _, family := range []schema.StationFamily{schema.FamilyRES, schema.FamilyDVA, schema.FamilyTSP} {
		_, err := decodeAttempt(family, `{"serial_number": "SN1"`)
		assert.Error(t, err, "family %s", family)
	}
}

func TestDecodeAttempt_MissingRequiredKey(t *testing.T) {
	tests := []struct {
		name    string
		family  schema.StationFamily
		payload string
	}{
		{"RES without serial", schema.FamilyRES, `{"TestResult":"PASS","EndTime":"2026-05-10 08:30:00"}`},
		{"RES without result", schema.FamilyRES, `{"SerialNumber":"SN1","EndTime":"2026-05-10 08:30:00"}`},
		{"DVA without end time", schema.FamilyDVA, `{"serialNumber":"SN1","testResult":"PASS"}`},
		{"TSP without stop time", schema.FamilyTSP, `{"serial_number":"SN1","result":"PASS"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeAttempt(tc.family, tc.payload)
			assert.Error(t, err)
		})
	}
}

func TestDecodeAttempt_TspMissingResultIsUnknown(t *testing.T) {
	payload := `{"fixture_id":"FX-01","stop_time":"2026-05-10 08:30:00","serial_number":"SN1","test_station":"TSP-E"}`

	raw, err := decodeAttempt(schema.FamilyTSP, payload)
	require.NoError(t, err)
	assert.Equal(t, string(schema.ResultUnknown), raw.Result)
}

func TestDecodeAttempt_UnknownFamily(t *testing.T) {
	_, err := decodeAttempt(schema.StationFamily("ict"), `{}`)
	assert.Error(t, err)
}
